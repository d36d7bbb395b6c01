package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/conorfennell/knolstudy/internal/clock"
	"github.com/conorfennell/knolstudy/internal/ident"
	"github.com/conorfennell/knolstudy/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spanishDeck = `DECK: Spanish
SUBJECT: Languages
CREATED: 2025-01-02T03:04:05Z
(d)-

CARD 1
FRONT: hola
BACK: hello
(c)-

CARD 2
FRONT: adiós
BACK: goodbye
TAGS: greetings
(c)-
`

func newReconciler(t *testing.T) (*Reconciler, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clk := clock.NewManual(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	return New(db, &ident.Sequence{Prefix: "id"}, clk, t.TempDir(), nil), db
}

func TestImport_CreatesDeckAndCards(t *testing.T) {
	ctx := context.Background()
	r, db := newReconciler(t)

	report, err := r.Import(ctx, strings.NewReader(spanishDeck), "fallback")
	require.NoError(t, err)
	assert.Equal(t, 1, report.DecksCreated)
	assert.Equal(t, 2, report.CardsAdded)
	assert.Zero(t, report.Duplicates)
	assert.Empty(t, report.Errors)

	deck, err := db.FindDeckByName(ctx, "Spanish")
	require.NoError(t, err)
	require.NotNil(t, deck)
	assert.Equal(t, "Languages", deck.Subject)

	cards, err := db.LoadDeckCards(ctx, deck.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "hola", cards[0].Front)
	assert.Equal(t, "Languages", cards[0].Subject)
	assert.Equal(t, []string{"greetings"}, cards[1].Tags)
}

func TestImport_SkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	r, db := newReconciler(t)

	_, err := r.Import(ctx, strings.NewReader(spanishDeck), "")
	require.NoError(t, err)

	// Same deck again, with one changed-case duplicate and one new card.
	again := strings.Replace(spanishDeck, "FRONT: hola", "FRONT: HOLA ", 1) +
		"\nCARD 3\nFRONT: gracias\nBACK: thanks\n(c)-\n"
	report, err := r.Import(ctx, strings.NewReader(again), "")
	require.NoError(t, err)
	assert.Zero(t, report.DecksCreated)
	assert.Equal(t, 1, report.CardsAdded)
	assert.Equal(t, 2, report.Duplicates)

	deck, err := db.FindDeckByName(ctx, "Spanish")
	require.NoError(t, err)
	cards, err := db.LoadDeckCards(ctx, deck.ID)
	require.NoError(t, err)
	assert.Len(t, cards, 3)
}

func TestImport_FallbackName(t *testing.T) {
	ctx := context.Background()
	r, db := newReconciler(t)

	body := "FLASHCARDS EXPORT\nEXPORTED: 2025-01-01T00:00:00Z\n(d)-\n\nCARD 1\nFRONT: a\nBACK: b\n(c)-\n"
	report, err := r.Import(ctx, strings.NewReader(body), "loose")
	require.NoError(t, err)
	assert.Equal(t, 1, report.CardsAdded)

	deck, err := db.FindDeckByName(ctx, "loose")
	require.NoError(t, err)
	assert.NotNil(t, deck)
}

func TestReconcile_LocalDirectory(t *testing.T) {
	ctx := context.Background()
	r, db := newReconciler(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spanish.txt"), []byte(spanishDeck), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "Capitals.TXT"),
		[]byte("CARD 1\nFRONT: France\nBACK: Paris\n(c)-\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# decks"), 0o644))

	report, err := r.Reconcile(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 2, report.DecksCreated)
	assert.Equal(t, 3, report.CardsAdded)
	assert.Empty(t, report.Errors)

	decks, err := db.LoadDecks(ctx)
	require.NoError(t, err)
	assert.Len(t, decks, 2)

	// A second pass finds nothing new.
	report, err = r.Reconcile(ctx, dir)
	require.NoError(t, err)
	assert.Zero(t, report.CardsAdded)
	assert.Equal(t, 3, report.Duplicates)
}

func TestReconcile_MissingDirectory(t *testing.T) {
	r, _ := newReconciler(t)
	_, err := r.Reconcile(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestImport_NonFiniteProgressIsNotRejected(t *testing.T) {
	r, _ := newReconciler(t)

	body := "DECK: Odd\n(d)-\n\nCARD 1\nFRONT: q\nBACK: a\nPROGRESS: interval=9223372036854775807, easeFactor=NaN, difficultyScore=Inf\n(c)-\n"
	report, err := r.Import(context.Background(), strings.NewReader(body), "")
	require.NoError(t, err)
	assert.Equal(t, 1, report.CardsAdded)
	assert.Empty(t, report.Errors)
}
