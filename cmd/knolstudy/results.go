package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolstudy/internal/grade"
)

func newResultsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List recorded test results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			testID, _ := cmd.Flags().GetString("test")
			results, err := a.db.LoadTestResults(cmd.Context(), testID)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No results recorded.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COMPLETED\tTEST\tQUESTIONS\tSCORE")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
					r.CompletedAt.Local().Format(time.DateTime), r.TestID, r.TotalQuestions, grade.Display(r.Score))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("test", "", "Only show results of this test id")
	return cmd
}
