package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolstudy/internal/textio"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a deck in the plain-text deck format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ref, _ := cmd.Flags().GetString("deck")
			progress, _ := cmd.Flags().GetBool("progress")
			path, _ := cmd.Flags().GetString("out")

			deck, err := a.resolveDeck(ctx, ref)
			if err != nil {
				return err
			}
			cards, err := a.db.LoadDeckCards(ctx, deck.ID)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return textio.ExportDeck(w, deck, cards, textio.Options{IncludeProgress: progress})
		},
	}
	cmd.Flags().String("deck", "", "Deck id or name")
	cmd.Flags().Bool("progress", false, "Include each card's scheduling state")
	cmd.Flags().String("out", "", "Output file (default: stdout)")
	_ = cmd.MarkFlagRequired("deck")
	return cmd
}
