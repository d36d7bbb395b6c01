// Package grade scores submitted answers to test questions.
//
// Every function here is pure: the same question and answer always give
// the same score.
package grade

import (
	"strings"

	"github.com/conorfennell/knolstudy/internal/domain"
)

// Grade scores answer against q and returns a value in [0, 1].
//
//   - identification: 1 when the first submitted string matches any
//     accepted answer, compared trimmed and, unless the question is case
//     sensitive, case-insensitively.
//   - true-false, and multiple-choice without partial credit: 1 when the
//     submitted set equals the correct set.
//   - multiple-choice with partial credit and more than one correct
//     answer: 0 when any selection is wrong, otherwise the share of correct
//     answers selected (proportional) or 1 only for a complete selection
//     (all-or-nothing).
func Grade(q domain.Question, answer []string) (float64, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	switch q.Type {
	case domain.Identification:
		return gradeIdentification(q, answer), nil
	case domain.MultipleChoice:
		correct := toSet(q.CorrectAnswer)
		if q.PartialCredit && len(correct) > 1 {
			return gradePartial(correct, toSet(answer), q.CreditMode()), nil
		}
		return exact(correct, toSet(answer)), nil
	default:
		return exact(toSet(q.CorrectAnswer), toSet(answer)), nil
	}
}

func gradeIdentification(q domain.Question, answer []string) float64 {
	if len(answer) == 0 {
		return 0
	}
	got := strings.TrimSpace(answer[0])
	if got == "" {
		return 0
	}
	for _, want := range q.CorrectAnswer {
		want = strings.TrimSpace(want)
		if q.CaseSensitive {
			if got == want {
				return 1
			}
		} else if strings.EqualFold(got, want) {
			return 1
		}
	}
	return 0
}

func gradePartial(correct, selected map[string]struct{}, mode domain.PartialCreditMode) float64 {
	hits := 0
	for s := range selected {
		if _, ok := correct[s]; !ok {
			return 0
		}
		hits++
	}
	if mode == domain.AllOrNothing {
		if hits == len(correct) {
			return 1
		}
		return 0
	}
	return float64(hits) / float64(len(correct))
}

func exact(correct, selected map[string]struct{}) float64 {
	if len(correct) != len(selected) {
		return 0
	}
	for s := range selected {
		if _, ok := correct[s]; !ok {
			return 0
		}
	}
	return 1
}

// toSet trims each answer and drops blanks and duplicates.
func toSet(answers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		set[a] = struct{}{}
	}
	return set
}
