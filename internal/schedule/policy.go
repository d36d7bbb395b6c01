// Package schedule turns a review rating into a card's next scheduling
// state. Two interchangeable policies exist: FixedInterval and
// AdaptiveEase. Callers pick one explicitly by Kind; nothing here knows
// which study mode is running.
package schedule

import (
	"fmt"
	"time"

	"github.com/conorfennell/knolstudy/internal/domain"
)

// Kind tags a scheduling policy.
type Kind string

const (
	Fixed    Kind = "fixed"
	Adaptive Kind = "adaptive"
)

// ParseKind converts a configuration string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Fixed, Adaptive:
		return k, nil
	}
	return "", domain.NewValidationError("policy", fmt.Sprintf("unknown scheduling policy %q", s))
}

// Policy computes the next state of a card after it has been rated.
// Implementations return a new card and never modify their input.
type Policy interface {
	Kind() Kind
	Next(card domain.Card, rating domain.Rating, now time.Time) (domain.Card, error)
}

// New returns the default policy for kind.
func New(kind Kind) (Policy, error) {
	switch kind {
	case Fixed:
		return DefaultFixedInterval(), nil
	case Adaptive:
		return DefaultAdaptiveEase(), nil
	}
	return nil, domain.NewValidationError("policy", fmt.Sprintf("unknown scheduling policy %q", string(kind)))
}

func checkRating(r domain.Rating) error {
	if !r.IsValid() {
		return domain.NewValidationError("rating", fmt.Sprintf("unknown rating %q", string(r)))
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
