// Package ident generates opaque identifiers for new records.
package ident

import (
	"strconv"

	"github.com/google/uuid"
)

// Generator produces a unique identifier per call.
type Generator interface {
	NewID() string
}

// UUID generates random (version 4) UUID strings.
type UUID struct{}

func (UUID) NewID() string { return uuid.NewString() }

// Sequence returns deterministic ids "<prefix>-1", "<prefix>-2", ... and is
// meant for tests and fixtures.
type Sequence struct {
	Prefix string
	n      int
}

func (s *Sequence) NewID() string {
	s.n++
	return s.Prefix + "-" + strconv.Itoa(s.n)
}
