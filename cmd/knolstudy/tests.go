package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolstudy/internal/domain"
)

func newTestsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tests",
		Short: "List stored tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tests, err := a.db.LoadTests(cmd.Context())
			if err != nil {
				return err
			}
			if len(tests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tests yet. Add some with: knolstudy tests add FILE.json")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tQUESTIONS\tTIME LIMIT")
			for _, t := range tests {
				limit := "none"
				if t.TimeLimit > 0 {
					limit = t.Duration().String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", t.ID, t.Title, len(t.Questions), limit)
			}
			return tw.Flush()
		},
	}
	cmd.AddCommand(newTestsAddCmd(a))
	return cmd
}

func newTestsAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add FILE.json",
		Short: "Add or replace tests from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var incoming []domain.Test
			if err := json.Unmarshal(data, &incoming); err != nil {
				return fmt.Errorf("failed to decode %s: %w", args[0], err)
			}

			now := a.clock.Now()
			for i := range incoming {
				t := &incoming[i]
				if err := domain.Validate(*t); err != nil {
					return fmt.Errorf("test %d: %w", i+1, err)
				}
				for _, q := range t.Questions {
					if err := q.Validate(); err != nil {
						return fmt.Errorf("test %s: %w", t.ID, err)
					}
				}
				if t.CreatedAt.IsZero() {
					t.CreatedAt = now
				}
				t.UpdatedAt = now
			}

			existing, err := a.db.LoadTests(ctx)
			if err != nil {
				return err
			}
			merged := mergeTests(existing, incoming)
			if err := a.db.SaveTests(ctx, merged); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d tests (%d total).\n", len(incoming), len(merged))
			return nil
		},
	}
}

// mergeTests replaces tests with matching ids and appends the rest.
func mergeTests(existing, incoming []domain.Test) []domain.Test {
	index := make(map[string]int, len(existing))
	out := append([]domain.Test(nil), existing...)
	for i, t := range out {
		index[t.ID] = i
	}
	for _, t := range incoming {
		if i, ok := index[t.ID]; ok {
			out[i] = t
			continue
		}
		index[t.ID] = len(out)
		out = append(out, t)
	}
	return out
}
