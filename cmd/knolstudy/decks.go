package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDecksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decks",
		Short: "List decks with card and due counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := a.study.Overview(cmd.Context(), a.clock.Now(), a.cfg.Study.Ahead)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No decks yet. Add one with: knolstudy import FILE")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSUBJECT\tCARDS\tDUE\tDIFFICULTY")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.2f\n",
					s.Deck.ID, s.Deck.Name, s.Deck.Subject, s.Cards, s.Due, s.MeanDifficulty)
			}
			return tw.Flush()
		},
	}
}
