package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/conorfennell/knolstudy/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func card(id, deck string) domain.Card {
	return domain.NewCard(id, deck, "front "+id, "back "+id, now.Add(-72*time.Hour))
}

func at(t time.Time) *time.Time { return &t }

func score(f float64) *float64 { return &f }

func ids(cards []domain.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestBuild_DueDateOrdersUnscheduledFirst(t *testing.T) {
	t1, t3 := card("t1", "d"), card("t3", "d")
	t1.NextReview = at(now.Add(-2 * time.Hour))
	t3.NextReview = at(now.Add(-time.Hour))
	never := card("never", "d")

	q, err := Build([]domain.Card{t1, never, t3}, Options{Mode: DueDate}, now)
	require.NoError(t, err)
	assert.Equal(t, StatusReady, q.Status)
	assert.Equal(t, []string{"never", "t1", "t3"}, ids(q.Cards))
}

func TestBuild_DueDateFiltersFutureCards(t *testing.T) {
	due, future, exact := card("due", "d"), card("future", "d"), card("exact", "d")
	due.NextReview = at(now.Add(-time.Minute))
	future.NextReview = at(now.Add(time.Minute))
	exact.NextReview = at(now)

	q, err := Build([]domain.Card{future, due, exact}, Options{Mode: DueDate}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"due", "exact"}, ids(q.Cards))
}

func TestBuild_DueDateStudyAheadKeepsEverything(t *testing.T) {
	a, b := card("a", "d"), card("b", "d")
	a.NextReview = at(now.Add(48 * time.Hour))
	b.NextReview = at(now.Add(24 * time.Hour))

	q, err := Build([]domain.Card{a, b}, Options{Mode: DueDate, StudyAhead: true}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(q.Cards))
}

func TestBuild_DueDateStableTies(t *testing.T) {
	a, b, c := card("a", "d"), card("b", "d"), card("c", "d")
	same := now.Add(-time.Hour)
	a.NextReview, c.NextReview = at(same), at(same)

	q, err := Build([]domain.Card{a, b, c}, Options{Mode: DueDate}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids(q.Cards))
}

func TestBuild_DueDateNothingDue(t *testing.T) {
	a := card("a", "d")
	a.NextReview = at(now.Add(time.Hour))

	q, err := Build([]domain.Card{a}, Options{Mode: DueDate}, now)
	require.NoError(t, err)
	assert.True(t, q.Empty())
	assert.Equal(t, StatusNothingDue, q.Status)
	assert.Equal(t, "nothing due", q.Status.String())
}

func TestBuild_PriorityHardestFirst(t *testing.T) {
	low, high, mid := card("low", "d"), card("high", "d"), card("mid", "d")
	low.DifficultyScore = score(0.2)
	high.DifficultyScore = score(0.9)
	mid.DifficultyScore = score(0.5)
	future := card("future", "d")
	future.DifficultyScore = score(0.7)
	future.NextReview = at(now.Add(30 * 24 * time.Hour))
	unrated := card("unrated", "d")

	q, err := Build([]domain.Card{low, high, mid, future, unrated}, Options{Mode: Priority}, now)
	require.NoError(t, err)
	// Unrated counts as 0.5 and keeps its position relative to mid.
	assert.Equal(t, []string{"high", "future", "mid", "unrated", "low"}, ids(q.Cards))
}

func TestBuild_FiltersByDeck(t *testing.T) {
	cards := []domain.Card{card("a", "d1"), card("b", "d2"), card("c", "d1")}

	q, err := Build(cards, Options{Mode: Priority, DeckID: "d1"}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(q.Cards))

	q, err = Build(cards, Options{Mode: Priority, DeckID: "missing"}, now)
	require.NoError(t, err)
	assert.Equal(t, StatusNothingToStudy, q.Status)
}

func TestBuild_DoesNotAliasInput(t *testing.T) {
	a := card("a", "d")
	a.DifficultyScore = score(0.3)
	input := []domain.Card{a}

	q, err := Build(input, Options{Mode: Priority}, now)
	require.NoError(t, err)
	*q.Cards[0].DifficultyScore = 0.9
	assert.Equal(t, 0.3, *input[0].DifficultyScore)
}

func TestBuild_UnknownMode(t *testing.T) {
	_, err := Build(nil, Options{Mode: "random"}, now)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = ParseMode("random")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
