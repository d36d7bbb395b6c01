package schedule

import (
	"math"
	"time"

	"github.com/conorfennell/knolstudy/internal/domain"
)

// AdaptiveEase is an SM-2 variant. Besides interval and ease factor it keeps
// an exponential moving average of how hard the card is, which the
// priority queue ranks by.
type AdaptiveEase struct {
	// DifficultyWeight is the share a new rating gets in the moving average.
	DifficultyWeight float64
	// RelearnDelay schedules a card rated Again.
	RelearnDelay time.Duration
	// AgainEasePenalty is subtracted from the ease factor on Again.
	AgainEasePenalty float64
	// HardMultiplier grows long intervals on Hard instead of the ease factor.
	HardMultiplier float64
	// EasyBonus multiplies the ease factor for long intervals on Easy.
	EasyBonus float64
	// MaxInterval caps the interval in days.
	MaxInterval int
}

// DefaultAdaptiveEase returns the parameters the study app ships with.
func DefaultAdaptiveEase() *AdaptiveEase {
	return &AdaptiveEase{
		DifficultyWeight: 0.3,
		RelearnDelay:     10 * time.Minute,
		AgainEasePenalty: 0.2,
		HardMultiplier:   1.2,
		EasyBonus:        1.3,
		MaxInterval:      domain.MaxInterval,
	}
}

// rawDifficulty is how hard each rating says the card was.
var rawDifficulty = map[domain.Rating]float64{
	domain.Again: 1.0,
	domain.Hard:  0.7,
	domain.Good:  0.4,
	domain.Easy:  0.1,
}

// quality is the SM-2 response grade of each passing rating.
var quality = map[domain.Rating]float64{
	domain.Hard: 3,
	domain.Good: 4,
	domain.Easy: 5,
}

func (p *AdaptiveEase) Kind() Kind { return Adaptive }

// Next applies the rating to card at now.
func (p *AdaptiveEase) Next(card domain.Card, rating domain.Rating, now time.Time) (domain.Card, error) {
	if err := checkRating(rating); err != nil {
		return domain.Card{}, err
	}
	out := card.Clone()
	out.ReviewCount++

	old := card.Difficulty()
	if math.IsNaN(old) {
		old = domain.NeutralDifficulty
	}
	score := p.nextDifficulty(old, rating)
	out.DifficultyScore = &score

	ease := card.EaseFactor
	if ease == 0 || math.IsNaN(ease) || math.IsInf(ease, 0) {
		ease = domain.DefaultEaseFactor
	}
	interval := min(max(card.Interval, 0), p.MaxInterval)

	var next time.Time
	if rating == domain.Again {
		interval = 0
		ease = math.Max(domain.MinEaseFactor, ease-p.AgainEasePenalty)
		next = now.Add(p.RelearnDelay)
	} else {
		ease = nextEase(ease, quality[rating])
		interval = p.nextInterval(interval, ease, rating)
		next = now.Add(time.Duration(interval) * 24 * time.Hour)
	}

	out.Interval = interval
	out.EaseFactor = ease
	out.NextReview = &next
	return out, nil
}

func (p *AdaptiveEase) nextDifficulty(old float64, rating domain.Rating) float64 {
	w := p.DifficultyWeight
	return clamp(old*(1-w)+rawDifficulty[rating]*w, 0, 1)
}

// nextEase is the SM-2 ease update for response quality q, floored.
func nextEase(ease, q float64) float64 {
	ease += 0.1 - (5-q)*(0.08+(5-q)*0.02)
	return math.Max(domain.MinEaseFactor, ease)
}

// nextInterval walks the fixed graduation ladder for young cards and
// multiplies mature ones.
func (p *AdaptiveEase) nextInterval(prev int, ease float64, rating domain.Rating) int {
	easy := rating == domain.Easy
	switch {
	case prev == 0:
		return 1
	case prev == 1:
		return pick(easy, 4, 3)
	case prev <= 4:
		return pick(easy, 10, 7)
	case prev <= 10:
		return pick(easy, 20, 15)
	}

	multiplier := ease
	switch rating {
	case domain.Hard:
		multiplier = p.HardMultiplier
	case domain.Easy:
		multiplier = ease * p.EasyBonus
	}
	// Capped before conversion so an oversized product cannot wrap negative.
	return int(math.Round(math.Min(float64(prev)*multiplier, float64(p.MaxInterval))))
}

func pick(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}
