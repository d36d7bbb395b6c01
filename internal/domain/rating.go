package domain

import (
	"encoding"
	"fmt"
	"strings"
)

// Rating is the reviewer's assessment of how hard a card was to recall.
type Rating string

const (
	Again Rating = "again"
	Hard  Rating = "hard"
	Good  Rating = "good"
	Easy  Rating = "easy"
)

// Ratings lists every valid rating from hardest to easiest.
var Ratings = []Rating{Again, Hard, Good, Easy}

var (
	_ fmt.Stringer             = Rating("")
	_ encoding.TextMarshaler   = Rating("")
	_ encoding.TextUnmarshaler = (*Rating)(nil)
)

func (r Rating) String() string { return string(r) }

// IsValid reports whether r is one of Again, Hard, Good or Easy.
func (r Rating) IsValid() bool {
	switch r {
	case Again, Hard, Good, Easy:
		return true
	}
	return false
}

// ParseRating accepts a rating name in any case, or its 1-4 position.
func ParseRating(s string) (Rating, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "1":
		return Again, nil
	case "2":
		return Hard, nil
	case "3":
		return Good, nil
	case "4":
		return Easy, nil
	}
	r := Rating(s)
	if !r.IsValid() {
		return "", NewValidationError("rating", fmt.Sprintf("unknown rating %q", s))
	}
	return r, nil
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, NewValidationError("rating", fmt.Sprintf("unknown rating %q", string(r)))
	}
	return []byte(r), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, err := ParseRating(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
