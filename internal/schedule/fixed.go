package schedule

import (
	"time"

	"github.com/conorfennell/knolstudy/internal/domain"
)

// FixedInterval maps each rating straight to a delay before the next
// review. Interval, ease factor and difficulty score are left alone.
type FixedInterval struct {
	Offsets map[domain.Rating]time.Duration
}

// DefaultFixedInterval returns the 10 minute / 1 day / 3 day / 7 day ladder.
func DefaultFixedInterval() *FixedInterval {
	return &FixedInterval{
		Offsets: map[domain.Rating]time.Duration{
			domain.Again: 10 * time.Minute,
			domain.Hard:  24 * time.Hour,
			domain.Good:  3 * 24 * time.Hour,
			domain.Easy:  7 * 24 * time.Hour,
		},
	}
}

func (p *FixedInterval) Kind() Kind { return Fixed }

// Next schedules the card Offsets[rating] after now.
func (p *FixedInterval) Next(card domain.Card, rating domain.Rating, now time.Time) (domain.Card, error) {
	if err := checkRating(rating); err != nil {
		return domain.Card{}, err
	}
	out := card.Clone()
	next := now.Add(p.Offsets[rating])
	out.NextReview = &next
	out.ReviewCount++
	return out, nil
}
