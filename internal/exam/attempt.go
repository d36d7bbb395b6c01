// Package exam runs one attempt at a practice test: it collects answers,
// enforces the optional time limit and produces the TestResult.
package exam

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/conorfennell/knolstudy/internal/clock"
	"github.com/conorfennell/knolstudy/internal/domain"
	"github.com/conorfennell/knolstudy/internal/grade"
	"github.com/conorfennell/knolstudy/internal/ident"
)

// ErrFinished is returned when an attempt has already been submitted or
// cancelled.
var ErrFinished = errors.New("test attempt already finished")

// ExpireFunc receives the result of an attempt submitted by its timer.
type ExpireFunc func(domain.TestResult, error)

// Attempt is a single sitting of a test. Questions are fixed for the
// lifetime of the attempt. It is safe to call from the timer goroutine
// and the caller concurrently.
type Attempt struct {
	mu       sync.Mutex
	test     domain.Test
	clock    clock.Clock
	ids      ident.Generator
	onExpire ExpireFunc

	answers  map[string][]string
	started  time.Time
	deadline time.Time
	timer    clock.Timer
	finished bool
}

// Start validates every question of test and begins the attempt. When the
// test has a time limit a single timer is armed; on expiry the attempt is
// submitted and the result handed to onExpire.
func Start(test domain.Test, clk clock.Clock, ids ident.Generator, onExpire ExpireFunc) (*Attempt, error) {
	if err := domain.Validate(test); err != nil {
		return nil, err
	}
	for _, q := range test.Questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}
	if clk == nil {
		clk = clock.System{}
	}
	if ids == nil {
		ids = ident.UUID{}
	}

	a := &Attempt{
		test:     test,
		clock:    clk,
		ids:      ids,
		onExpire: onExpire,
		answers:  make(map[string][]string, len(test.Questions)),
		started:  clk.Now(),
	}
	if d := test.Duration(); d > 0 {
		a.deadline = a.started.Add(d)
		a.timer = clk.AfterFunc(d, a.expire)
	}
	slog.Debug("test attempt started", "test_id", test.ID, "questions", len(test.Questions), "time_limit", test.Duration())
	return a, nil
}

// Test returns the test being taken.
func (a *Attempt) Test() domain.Test { return a.test }

// SetAnswer records the answer for questionID, replacing any earlier one.
func (a *Attempt) SetAnswer(questionID string, answer []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finished {
		return ErrFinished
	}
	if !a.hasQuestion(questionID) {
		return domain.NewValidationError("question", fmt.Sprintf("test %s has no question %q", a.test.ID, questionID))
	}
	a.answers[questionID] = append([]string(nil), answer...)
	return nil
}

// Answer returns the recorded answer for questionID.
func (a *Attempt) Answer(questionID string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.answers[questionID]...)
}

// Remaining returns the time left before automatic submission. ok is false
// for untimed tests.
func (a *Attempt) Remaining() (left time.Duration, ok bool) {
	if a.deadline.IsZero() {
		return 0, false
	}
	left = a.deadline.Sub(a.clock.Now())
	if left < 0 {
		left = 0
	}
	return left, true
}

// Finished reports whether the attempt was submitted or cancelled.
func (a *Attempt) Finished() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.finished
}

// Submit grades the attempt and stops the timer. It succeeds only once.
func (a *Attempt) Submit() (domain.TestResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.submitLocked()
}

// Cancel abandons the attempt without a result and stops the timer.
func (a *Attempt) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finished {
		return
	}
	a.finished = true
	a.stopTimer()
	slog.Debug("test attempt cancelled", "test_id", a.test.ID)
}

func (a *Attempt) expire() {
	a.mu.Lock()
	if a.finished {
		a.mu.Unlock()
		return
	}
	result, err := a.submitLocked()
	a.mu.Unlock()

	slog.Info("test time limit reached, submitted automatically", "test_id", a.test.ID)
	if a.onExpire != nil {
		a.onExpire(result, err)
	}
}

func (a *Attempt) submitLocked() (domain.TestResult, error) {
	if a.finished {
		return domain.TestResult{}, ErrFinished
	}
	report, err := grade.ScoreTest(a.test, a.answers)
	if err != nil {
		return domain.TestResult{}, fmt.Errorf("grade test %s: %w", a.test.ID, err)
	}
	a.finished = true
	a.stopTimer()

	answers := make(map[string][]string, len(a.answers))
	for id, ans := range a.answers {
		answers[id] = append([]string(nil), ans...)
	}
	return domain.TestResult{
		ID:             a.ids.NewID(),
		TestID:         a.test.ID,
		Answers:        answers,
		Score:          report.Percent,
		TotalQuestions: report.Total,
		CompletedAt:    a.clock.Now(),
	}, nil
}

func (a *Attempt) stopTimer() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Attempt) hasQuestion(id string) bool {
	for _, q := range a.test.Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}
