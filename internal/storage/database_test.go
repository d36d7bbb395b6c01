package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/conorfennell/knolstudy/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func ids(cards []domain.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestCards_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	rated := domain.NewCard("c1", "d1", "Capital of France?", "Paris", now)
	rated.Tags = []string{"geo", "europe"}
	score := 0.65
	next := now.Add(10 * time.Minute)
	rated.DifficultyScore = &score
	rated.NextReview = &next
	rated.Interval = 3
	rated.EaseFactor = 2.36
	rated.ReviewCount = 4
	fresh := domain.NewCard("c2", "d1", "2+2", "4", now)

	require.NoError(t, db.SaveCards(ctx, []domain.Card{rated, fresh}))

	cards, err := db.LoadCards(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"c1", "c2"}, ids(cards))

	got := cards[0]
	assert.Equal(t, []string{"geo", "europe"}, got.Tags)
	assert.Equal(t, 3, got.Interval)
	assert.Equal(t, 2.36, got.EaseFactor)
	assert.Equal(t, 4, got.ReviewCount)
	require.NotNil(t, got.DifficultyScore)
	assert.Equal(t, 0.65, *got.DifficultyScore)
	require.NotNil(t, got.NextReview)
	assert.True(t, got.NextReview.Equal(next))
	assert.True(t, got.CreatedAt.Equal(now))

	assert.Nil(t, cards[1].DifficultyScore)
	assert.Nil(t, cards[1].NextReview)
	assert.Equal(t, []string{}, cards[1].Tags)
}

func TestCards_SaveReplacesCollection(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.SaveCards(ctx, []domain.Card{
		domain.NewCard("a", "d", "f", "b", now),
		domain.NewCard("b", "d", "f", "b", now),
	}))
	require.NoError(t, db.SaveCards(ctx, []domain.Card{domain.NewCard("c", "d", "f", "b", now)}))

	cards, err := db.LoadCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(cards))
}

func TestCards_MergeReplacesOnlyGivenIDs(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	a := domain.NewCard("a", "d", "fa", "ba", now)
	b := domain.NewCard("b", "d", "fb", "bb", now)
	require.NoError(t, db.SaveCards(ctx, []domain.Card{a, b}))

	b.ReviewCount = 2
	ghost := domain.NewCard("ghost", "d", "f", "b", now)
	n, err := db.MergeCards(ctx, []domain.Card{b, ghost})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cards, err := db.LoadCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(cards))
	assert.Equal(t, 0, cards[0].ReviewCount)
	assert.Equal(t, 2, cards[1].ReviewCount)
}

func TestCards_InsertAppends(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.SaveCards(ctx, []domain.Card{domain.NewCard("a", "d", "f", "b", now)}))
	require.NoError(t, db.InsertCards(ctx, []domain.Card{
		domain.NewCard("b", "d", "f", "b", now),
		domain.NewCard("c", "e", "f", "b", now),
	}))

	cards, err := db.LoadCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(cards))

	deckCards, err := db.LoadDeckCards(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(deckCards))

	_, err = db.GetCard(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecks_DeleteCascadesToCards(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.InsertDeck(ctx, domain.Deck{ID: "d1", Name: "Spanish", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, db.InsertDeck(ctx, domain.Deck{ID: "d2", Name: "German", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, db.SaveCards(ctx, []domain.Card{
		domain.NewCard("a", "d1", "f", "b", now),
		domain.NewCard("b", "d2", "f", "b", now),
	}))

	found, err := db.FindDeckByName(ctx, "German")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "d2", found.ID)

	require.NoError(t, db.DeleteDeck(ctx, "d1"))

	decks, err := db.LoadDecks(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, "German", decks[0].Name)

	cards, err := db.LoadCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(cards))

	_, err = db.GetDeck(ctx, "d1")
	assert.ErrorIs(t, err, ErrNotFound)
	missing, err := db.FindDeckByName(ctx, "Spanish")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNotes_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.SaveNotes(ctx, []domain.Note{
		{ID: "n1", Title: "Cells", Content: "<p>mitochondria</p>", Subject: "Biology", Tags: []string{"bio"}, CreatedAt: now, UpdatedAt: now},
	}))
	notes, err := db.LoadNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Cells", notes[0].Title)
	assert.Equal(t, []string{"bio"}, notes[0].Tags)
}

func TestTests_RoundTripAndResults(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	test := domain.Test{
		ID:        "t1",
		Title:     "Primes",
		TimeLimit: 10,
		Questions: []domain.Question{{
			ID:                "q1",
			Type:              domain.MultipleChoice,
			Prompt:            "Which are prime?",
			Options:           []string{"2", "4", "3"},
			CorrectAnswer:     []string{"A", "C"},
			PartialCredit:     true,
			PartialCreditMode: domain.Proportional,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.SaveTests(ctx, []domain.Test{test}))

	got, err := db.GetTest(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 10, got.TimeLimit)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, test.Questions[0].CorrectAnswer, got.Questions[0].CorrectAnswer)
	assert.Equal(t, domain.Proportional, got.Questions[0].PartialCreditMode)

	require.NoError(t, db.AppendTestResult(ctx, domain.TestResult{
		ID: "r1", TestID: "t1", Answers: map[string][]string{"q1": {"A"}}, Score: 50, TotalQuestions: 1, CompletedAt: now,
	}))
	require.NoError(t, db.AppendTestResult(ctx, domain.TestResult{
		ID: "r2", TestID: "other", Score: 100, TotalQuestions: 1, CompletedAt: now,
	}))

	all, err := db.LoadTestResults(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := db.LoadTestResults(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, []string{"A"}, mine[0].Answers["q1"])
	assert.Equal(t, 50.0, mine[0].Score)
}

func TestTests_MigratesLegacyCorrectAnswer(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO tests (id, title, questions, created_at, updated_at)
		VALUES ('legacy', 'Old', ?, ?, ?)
	`, `[{"id":"q1","type":"multiple-choice","question":"?","options":["a","b","c"],"correctAnswer":"A, C| ","subject":"","tags":[]}]`, now, now)
	require.NoError(t, err)

	got, err := db.GetTest(ctx, "legacy")
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, []string{"A", "C"}, got.Questions[0].CorrectAnswer)
}
