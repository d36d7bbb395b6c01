package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolstudy/internal/domain"
	"github.com/conorfennell/knolstudy/internal/queue"
	"github.com/conorfennell/knolstudy/internal/session"
)

func newStudyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "study",
		Short: "Review a deck interactively",
		Long: `Review cards one at a time. Each card's front is shown; press Enter to
reveal the back, then rate it again, hard, good or easy (or 1-4). Enter q
to stop early; cards rated so far are saved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ref, _ := cmd.Flags().GetString("deck")
			modeFlag, _ := cmd.Flags().GetString("mode")

			mode, err := queue.ParseMode(modeFlag)
			if err != nil {
				return err
			}
			var deckID string
			if ref != "" {
				deck, err := a.resolveDeck(ctx, ref)
				if err != nil {
					return err
				}
				deckID = deck.ID
			}

			runner, status, err := a.study.Start(ctx, deckID, mode, a.cfg.Study.Ahead)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if runner == nil {
				fmt.Fprintf(out, "%s.\n", capitalize(status.String()))
				return nil
			}

			outcome, err := review(runner, cmd.InOrStdin(), out)
			if err != nil {
				return err
			}
			saved, err := a.study.Finish(ctx, outcome)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nSession %s: %d of %d cards reviewed.\n", outcome.State, saved, len(outcome.Cards))
			return nil
		},
	}
	cmd.Flags().String("deck", "", "Deck id or name (default: every deck)")
	cmd.Flags().String("mode", string(queue.DueDate), "Study mode: due or priority")
	cmd.Flags().Bool("ahead", false, "Include cards that are not yet due")
	cmd.Flags().String("due-policy", "fixed", "Scheduling policy for due mode: fixed or adaptive")
	cmd.Flags().String("priority-policy", "adaptive", "Scheduling policy for priority mode: fixed or adaptive")
	return cmd
}

// review drives runner from lines read on in until the session ends. End of
// input exits the session.
func review(runner *session.Runner, in io.Reader, out io.Writer) (session.Outcome, error) {
	scanner := bufio.NewScanner(in)

	for {
		card, ok := runner.Current()
		if !ok {
			return session.Outcome{}, session.ErrSessionEnded
		}
		pos, total := runner.Position()
		fmt.Fprintf(out, "\n[%d/%d] %s\n(Enter to reveal) ", pos+1, total, card.Front)
		if !scanner.Scan() {
			return runner.Exit()
		}
		fmt.Fprintf(out, "%s\n", card.Back)

		for {
			fmt.Fprint(out, "Rating [1 again, 2 hard, 3 good, 4 easy, q quit]: ")
			if !scanner.Scan() {
				return runner.Exit()
			}
			input := strings.TrimSpace(scanner.Text())
			if strings.EqualFold(input, "q") {
				return runner.Exit()
			}
			rating, err := domain.ParseRating(input)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			outcome, err := runner.Rate(rating)
			if err != nil {
				return outcome, err
			}
			if outcome.Done() {
				return outcome, nil
			}
			break
		}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
