// Package study wires queues, sessions and scheduling policies to the
// persistent store.
package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/conorfennell/knolstudy/internal/clock"
	"github.com/conorfennell/knolstudy/internal/domain"
	"github.com/conorfennell/knolstudy/internal/queue"
	"github.com/conorfennell/knolstudy/internal/schedule"
	"github.com/conorfennell/knolstudy/internal/session"
)

// Store is the part of storage a Service reads and writes.
type Store interface {
	LoadDecks(ctx context.Context) ([]domain.Deck, error)
	LoadCards(ctx context.Context) ([]domain.Card, error)
	LoadDeckCards(ctx context.Context, deckID string) ([]domain.Card, error)
	MergeCards(ctx context.Context, cards []domain.Card) (int, error)
	AppendTestResult(ctx context.Context, r domain.TestResult) error
}

// Policies selects the scheduling policy used by each study mode.
type Policies struct {
	Due      schedule.Kind
	Priority schedule.Kind
}

// DefaultPolicies pairs due-date study with fixed intervals and priority
// study with adaptive ease.
var DefaultPolicies = Policies{Due: schedule.Fixed, Priority: schedule.Adaptive}

// DeckSummary is one row of the deck overview.
type DeckSummary struct {
	Deck           domain.Deck
	Cards          int
	Due            int
	MeanDifficulty float64
}

type Service struct {
	store    Store
	clock    clock.Clock
	policies map[queue.Mode]schedule.Policy
}

func New(store Store, clk clock.Clock, p Policies) (*Service, error) {
	if clk == nil {
		clk = clock.System{}
	}
	due, err := schedule.New(p.Due)
	if err != nil {
		return nil, err
	}
	priority, err := schedule.New(p.Priority)
	if err != nil {
		return nil, err
	}
	return &Service{
		store: store,
		clock: clk,
		policies: map[queue.Mode]schedule.Policy{
			queue.DueDate:  due,
			queue.Priority: priority,
		},
	}, nil
}

// PolicyFor returns the policy applied to ratings in mode.
func (s *Service) PolicyFor(mode queue.Mode) (schedule.Policy, error) {
	p, ok := s.policies[mode]
	if !ok {
		return nil, domain.NewValidationError("mode", fmt.Sprintf("unknown study mode %q", string(mode)))
	}
	return p, nil
}

// Start builds a queue for deckID (every deck when empty) and opens a
// session over it. When the queue is empty no session is started and the
// returned runner is nil; the status says why.
func (s *Service) Start(ctx context.Context, deckID string, mode queue.Mode, studyAhead bool) (*session.Runner, queue.Status, error) {
	policy, err := s.PolicyFor(mode)
	if err != nil {
		return nil, 0, err
	}

	cards, err := s.loadCards(ctx, deckID)
	if err != nil {
		return nil, 0, err
	}

	q, err := queue.Build(cards, queue.Options{Mode: mode, DeckID: deckID, StudyAhead: studyAhead}, s.clock.Now())
	if err != nil {
		return nil, 0, err
	}
	if q.Empty() {
		slog.Info("Nothing to review", "deck_id", deckID, "mode", mode, "status", q.Status)
		return nil, q.Status, nil
	}

	runner, err := session.New(q, policy, s.clock)
	if err != nil {
		return nil, q.Status, err
	}
	slog.Info("Study session started", "deck_id", deckID, "mode", mode, "policy", policy.Kind(), "cards", len(q.Cards))
	return runner, q.Status, nil
}

// Finish persists the cards rated in a finished session. Cards outside the
// session are left untouched. It returns the number of cards written.
func (s *Service) Finish(ctx context.Context, out session.Outcome) (int, error) {
	if !out.Done() {
		return 0, domain.NewValidationError("outcome", "session is still in progress")
	}

	rated := make(map[string]struct{}, len(out.Rated))
	for _, id := range out.Rated {
		rated[id] = struct{}{}
	}
	var changed []domain.Card
	for _, c := range out.Cards {
		if _, ok := rated[c.ID]; ok {
			changed = append(changed, c)
		}
	}
	if len(changed) == 0 {
		slog.Info("Study session ended", "state", out.State, "rated", 0)
		return 0, nil
	}

	n, err := s.store.MergeCards(ctx, changed)
	if err != nil {
		return 0, fmt.Errorf("failed to save session outcome: %w", err)
	}
	slog.Info("Study session ended", "state", out.State, "rated", len(out.Rated), "saved", n)
	return n, nil
}

// Overview summarizes every deck at now.
func (s *Service) Overview(ctx context.Context, now time.Time, studyAhead bool) ([]DeckSummary, error) {
	decks, err := s.store.LoadDecks(ctx)
	if err != nil {
		return nil, err
	}
	cards, err := s.store.LoadCards(ctx)
	if err != nil {
		return nil, err
	}

	byDeck := make(map[string][]domain.Card, len(decks))
	for _, c := range cards {
		byDeck[c.DeckID] = append(byDeck[c.DeckID], c)
	}

	summaries := make([]DeckSummary, 0, len(decks))
	for _, d := range decks {
		deckCards := byDeck[d.ID]
		sum := DeckSummary{Deck: d, Cards: len(deckCards)}
		var total float64
		for _, c := range deckCards {
			if studyAhead || c.IsDue(now) {
				sum.Due++
			}
			total += c.Difficulty()
		}
		if len(deckCards) > 0 {
			sum.MeanDifficulty = total / float64(len(deckCards))
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// RecordResult appends a finished test attempt to the results history.
func (s *Service) RecordResult(ctx context.Context, r domain.TestResult) error {
	if err := s.store.AppendTestResult(ctx, r); err != nil {
		return err
	}
	slog.Info("Test result recorded", "test_id", r.TestID, "score", r.Score, "questions", r.TotalQuestions)
	return nil
}

func (s *Service) loadCards(ctx context.Context, deckID string) ([]domain.Card, error) {
	if deckID == "" {
		return s.store.LoadCards(ctx)
	}
	return s.store.LoadDeckCards(ctx, deckID)
}
