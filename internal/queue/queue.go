// Package queue selects and orders the cards presented in a study session.
package queue

import (
	"fmt"
	"sort"
	"time"

	"github.com/conorfennell/knolstudy/internal/domain"
)

// Mode selects how a session's cards are chosen and ordered.
type Mode string

const (
	// DueDate studies cards whose review time has come, oldest first.
	DueDate Mode = "due"
	// Priority studies every card in the deck, hardest first.
	Priority Mode = "priority"
)

// ParseMode converts a command-line or configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case DueDate, Priority:
		return m, nil
	}
	return "", domain.NewValidationError("mode", fmt.Sprintf("unknown study mode %q", s))
}

// Status tells the caller whether a session can start.
type Status int

const (
	StatusReady Status = iota
	// StatusNothingDue is an empty due-date queue.
	StatusNothingDue
	// StatusNothingToStudy is an empty deck in priority mode.
	StatusNothingToStudy
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusNothingDue:
		return "nothing due"
	case StatusNothingToStudy:
		return "nothing to study"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Options configures Build.
type Options struct {
	Mode Mode
	// DeckID restricts the queue to one deck; empty means every card given.
	DeckID string
	// StudyAhead disables due-date filtering in DueDate mode.
	StudyAhead bool
}

// Queue is the ordered snapshot a session walks through. It is computed
// once and never re-sorted.
type Queue struct {
	Mode   Mode
	Cards  []domain.Card
	Status Status
}

// Empty reports whether there is nothing to present.
func (q Queue) Empty() bool { return len(q.Cards) == 0 }

// Build selects and orders cards for a session at now. The returned cards
// are copies; the input slice is not reordered.
func Build(cards []domain.Card, opts Options, now time.Time) (Queue, error) {
	switch opts.Mode {
	case DueDate:
		return buildDue(cards, opts, now), nil
	case Priority:
		return buildPriority(cards, opts), nil
	}
	return Queue{}, domain.NewValidationError("mode", fmt.Sprintf("unknown study mode %q", string(opts.Mode)))
}

func buildDue(cards []domain.Card, opts Options, now time.Time) Queue {
	var selected []domain.Card
	for _, c := range cards {
		if opts.DeckID != "" && c.DeckID != opts.DeckID {
			continue
		}
		if !opts.StudyAhead && !c.IsDue(now) {
			continue
		}
		selected = append(selected, c.Clone())
	}

	// Never-scheduled cards sort first; ties keep their original order.
	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i].NextReview, selected[j].NextReview
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		}
		return a.Before(*b)
	})

	q := Queue{Mode: DueDate, Cards: selected, Status: StatusReady}
	if q.Empty() {
		q.Status = StatusNothingDue
	}
	return q
}

func buildPriority(cards []domain.Card, opts Options) Queue {
	var selected []domain.Card
	for _, c := range cards {
		if opts.DeckID != "" && c.DeckID != opts.DeckID {
			continue
		}
		selected = append(selected, c.Clone())
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Difficulty() > selected[j].Difficulty()
	})

	q := Queue{Mode: Priority, Cards: selected, Status: StatusReady}
	if q.Empty() {
		q.Status = StatusNothingToStudy
	}
	return q
}
