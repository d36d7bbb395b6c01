package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knolstudy/internal/domain"
	"github.com/conorfennell/knolstudy/internal/exam"
	"github.com/conorfennell/knolstudy/internal/grade"
	"github.com/conorfennell/knolstudy/internal/ident"
)

// errAbandoned ends an attempt that input ran out on before submission.
var errAbandoned = errors.New("test abandoned")

type expiry struct {
	result domain.TestResult
	err    error
}

func newTestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Take a test",
		Long: `Answer each question in turn. Multiple-choice answers are option letters
separated by commas or spaces; true-false accepts t/true or f/false. A timed
test is submitted automatically when time runs out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, _ := cmd.Flags().GetString("id")
			test, err := a.db.GetTest(ctx, id)
			if err != nil {
				return err
			}

			expired := make(chan expiry, 1)
			attempt, err := exam.Start(test, a.clock, ident.UUID{}, func(r domain.TestResult, err error) {
				expired <- expiry{result: r, err: err}
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			result, err := takeTest(attempt, cmd.InOrStdin(), out, expired)
			if errors.Is(err, errAbandoned) {
				fmt.Fprintln(out, "\nTest cancelled; no result recorded.")
				return nil
			}
			if err != nil {
				return err
			}
			if err := a.study.RecordResult(ctx, result); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nScore: %s over %d questions.\n", grade.Display(result.Score), result.TotalQuestions)
			return nil
		},
	}
	cmd.Flags().String("id", "", "Test id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// takeTest asks every question of attempt and submits it. Input is read in
// the background so that expiry can interrupt a pending answer.
func takeTest(attempt *exam.Attempt, in io.Reader, out io.Writer, expired <-chan expiry) (domain.TestResult, error) {
	done := make(chan struct{})
	defer close(done)
	lines := readLines(in, done)

	test := attempt.Test()
	fmt.Fprintf(out, "%s (%d questions)\n", test.Title, len(test.Questions))

	for i, q := range test.Questions {
		fmt.Fprintf(out, "\n%d. %s\n", i+1, q.Prompt)
		for j, opt := range q.Options {
			fmt.Fprintf(out, "   %s) %s\n", domain.OptionLetter(j), opt)
		}
		if q.Type == domain.TrueFalse {
			fmt.Fprintln(out, "   (true/false)")
		}
		if left, ok := attempt.Remaining(); ok {
			fmt.Fprintf(out, "   [%s left]\n", left.Round(time.Second))
		}
		fmt.Fprint(out, "> ")

		select {
		case e := <-expired:
			fmt.Fprintln(out, "\nTime is up.")
			return e.result, e.err
		case line, ok := <-lines:
			if !ok {
				attempt.Cancel()
				return domain.TestResult{}, errAbandoned
			}
			if err := attempt.SetAnswer(q.ID, parseAnswer(q, line)); err != nil {
				if errors.Is(err, exam.ErrFinished) {
					e := <-expired
					return e.result, e.err
				}
				return domain.TestResult{}, err
			}
		}
	}

	result, err := attempt.Submit()
	if errors.Is(err, exam.ErrFinished) {
		e := <-expired
		return e.result, e.err
	}
	return result, err
}

// readLines sends each line of in until in ends or done is closed. The
// returned channel is closed when the reader stops.
func readLines(in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case <-done:
				return
			default:
			}
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()
	return lines
}

// parseAnswer turns a typed line into the answer list of q's type.
func parseAnswer(q domain.Question, line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	switch q.Type {
	case domain.MultipleChoice:
		return strings.FieldsFunc(strings.ToUpper(line), func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
	case domain.TrueFalse:
		switch strings.ToLower(line) {
		case "t", "true":
			return []string{domain.AnswerTrue}
		case "f", "false":
			return []string{domain.AnswerFalse}
		}
	}
	return []string{line}
}
