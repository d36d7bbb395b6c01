// Package session steps a reviewer through a study queue one card at a
// time, applying a scheduling policy after each rating.
package session

import (
	"errors"
	"fmt"

	"github.com/conorfennell/knolstudy/internal/clock"
	"github.com/conorfennell/knolstudy/internal/domain"
	"github.com/conorfennell/knolstudy/internal/queue"
	"github.com/conorfennell/knolstudy/internal/schedule"
)

var (
	// ErrSessionEnded is returned by Rate and Exit once the session is over.
	ErrSessionEnded = errors.New("session has ended")
	// ErrEmptyQueue is returned by New for a queue with no cards.
	ErrEmptyQueue = errors.New("study queue is empty")
)

// State is the runner's position in its lifecycle.
type State int

const (
	InProgress State = iota
	Completed
	Exited
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Completed:
		return "completed"
	case Exited:
		return "exited"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool { return s != InProgress }

// Outcome is what a Rate or Exit call hands back. Cards is only set once
// the session has ended and then holds the whole queue snapshot; Rated
// lists the ids whose state changed, in rating order.
type Outcome struct {
	State State
	Cards []domain.Card
	Rated []string
}

// Done reports whether the session has ended.
func (o Outcome) Done() bool { return o.State.Terminal() }

// Runner is a single-use, single-caller study session.
type Runner struct {
	policy  schedule.Policy
	clock   clock.Clock
	cards   []domain.Card
	current int
	state   State
	rated   []string
}

// New starts a session over q. The queue is copied; later changes to q do
// not affect the session.
func New(q queue.Queue, policy schedule.Policy, clk clock.Clock) (*Runner, error) {
	if q.Empty() {
		return nil, ErrEmptyQueue
	}
	if policy == nil {
		return nil, domain.NewValidationError("policy", "no scheduling policy given")
	}
	if clk == nil {
		clk = clock.System{}
	}
	cards := make([]domain.Card, len(q.Cards))
	for i, c := range q.Cards {
		cards[i] = c.Clone()
	}
	return &Runner{policy: policy, clock: clk, cards: cards}, nil
}

// State returns the current lifecycle state.
func (r *Runner) State() State { return r.state }

// Policy returns the scheduling policy applied to ratings.
func (r *Runner) Policy() schedule.Policy { return r.policy }

// Position returns the 0-based index of the current card and the queue length.
func (r *Runner) Position() (int, int) { return r.current, len(r.cards) }

// Current returns the card awaiting a rating. ok is false once the session
// has ended.
func (r *Runner) Current() (domain.Card, bool) {
	if r.state.Terminal() {
		return domain.Card{}, false
	}
	return r.cards[r.current].Clone(), true
}

// Rate applies rating to the current card and moves to the next one.
// Rating the last card completes the session. An invalid rating leaves the
// session untouched.
func (r *Runner) Rate(rating domain.Rating) (Outcome, error) {
	if r.state.Terminal() {
		return Outcome{State: r.state}, ErrSessionEnded
	}
	updated, err := r.policy.Next(r.cards[r.current], rating, r.clock.Now())
	if err != nil {
		return Outcome{State: r.state}, err
	}
	r.cards[r.current] = updated
	r.rated = append(r.rated, updated.ID)

	if r.current == len(r.cards)-1 {
		r.state = Completed
		return r.emit(), nil
	}
	r.current++
	return Outcome{State: InProgress}, nil
}

// Exit ends the session early. Cards rated so far carry their new state;
// the rest are returned unchanged.
func (r *Runner) Exit() (Outcome, error) {
	if r.state.Terminal() {
		return Outcome{State: r.state}, ErrSessionEnded
	}
	r.state = Exited
	return r.emit(), nil
}

func (r *Runner) emit() Outcome {
	cards := make([]domain.Card, len(r.cards))
	for i, c := range r.cards {
		cards[i] = c.Clone()
	}
	return Outcome{
		State: r.state,
		Cards: cards,
		Rated: append([]string(nil), r.rated...),
	}
}

// Merge replaces every card in all whose id appears in updated and leaves
// the others untouched. The order of all is preserved and updated cards
// with unknown ids are ignored.
func Merge(all, updated []domain.Card) []domain.Card {
	byID := make(map[string]domain.Card, len(updated))
	for _, c := range updated {
		byID[c.ID] = c
	}
	out := make([]domain.Card, len(all))
	for i, c := range all {
		if u, ok := byID[c.ID]; ok {
			out[i] = u.Clone()
			continue
		}
		out[i] = c
	}
	return out
}
