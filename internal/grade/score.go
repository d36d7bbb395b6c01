package grade

import (
	"fmt"
	"math"

	"github.com/conorfennell/knolstudy/internal/domain"
)

// Report is the graded result of one test attempt.
type Report struct {
	// Scores holds each question's score in [0, 1], keyed by question id.
	Scores map[string]float64
	// Percent is the mean question score scaled to 0-100, unrounded.
	Percent float64
	Total   int
}

// ScoreTest grades every question of t against answers. Unanswered
// questions score 0. A test without questions scores 0.
func ScoreTest(t domain.Test, answers map[string][]string) (Report, error) {
	r := Report{Scores: make(map[string]float64, len(t.Questions)), Total: len(t.Questions)}
	if len(t.Questions) == 0 {
		return r, nil
	}
	var sum float64
	for i, q := range t.Questions {
		s, err := Grade(q, answers[q.ID])
		if err != nil {
			return Report{}, fmt.Errorf("question %d: %w", i+1, err)
		}
		r.Scores[q.ID] = s
		sum += s
	}
	r.Percent = sum / float64(len(t.Questions)) * 100
	return r, nil
}

// Display rounds a stored percentage to one decimal place for output.
func Display(percent float64) string {
	return fmt.Sprintf("%.1f%%", math.Round(percent*10)/10)
}
