package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolstudy/internal/ident"
	"github.com/conorfennell/knolstudy/internal/library"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [FILE]",
		Short: "Import a deck file, or reconcile a directory or git repository of decks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			source, _ := cmd.Flags().GetString("source")
			if (source == "") == (len(args) == 0) {
				return errors.New("give either a FILE or --source")
			}

			r := library.New(a.db, ident.UUID{}, a.clock, a.cfg.Library.ReposDir, cmd.ErrOrStderr())

			var (
				report library.Report
				err    error
			)
			if source != "" {
				report, err = r.Reconcile(ctx, source)
			} else {
				report, err = r.ImportFile(ctx, args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Files: %d, decks created: %d, cards added: %d, duplicates skipped: %d, errors: %d\n",
				report.Files, report.DecksCreated, report.CardsAdded, report.Duplicates, len(report.Errors))
			for _, e := range report.Errors {
				fmt.Fprintf(out, "- %s\n", e)
			}
			return nil
		},
	}
	cmd.Flags().String("source", "", "Local directory or git URL to reconcile")
	return cmd
}
