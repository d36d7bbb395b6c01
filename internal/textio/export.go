// Package textio reads and writes decks in the portable plain-text format:
// a header block closed by "(d)-" followed by CARD blocks closed by "(c)-".
package textio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/conorfennell/knolstudy/internal/domain"
)

const (
	deckPrefix        = "DECK: "
	subjectPrefix     = "SUBJECT: "
	descriptionPrefix = "DESCRIPTION: "
	createdPrefix     = "CREATED: "
	exportedPrefix    = "EXPORTED: "
	cardPrefix        = "CARD "
	frontPrefix       = "FRONT: "
	backPrefix        = "BACK: "
	tagsPrefix        = "TAGS: "
	progressPrefix    = "PROGRESS: "

	cardsHeader   = "FLASHCARDS EXPORT"
	deckSeparator = "(d)-"
	cardSeparator = "(c)-"
)

// Options controls what an export includes.
type Options struct {
	// IncludeProgress writes each card's scheduling state.
	IncludeProgress bool
}

// ExportDeck writes deck and its cards.
func ExportDeck(w io.Writer, deck domain.Deck, cards []domain.Card, opts Options) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s%s\n", deckPrefix, deck.Name)
	fmt.Fprintf(bw, "%s%s\n", subjectPrefix, deck.Subject)
	if deck.Description != "" {
		fmt.Fprintf(bw, "%s%s\n", descriptionPrefix, deck.Description)
	}
	fmt.Fprintf(bw, "%s%s\n", createdPrefix, deck.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(bw, "%s\n\n", deckSeparator)
	writeCards(bw, cards, opts)
	return bw.Flush()
}

// ExportCards writes cards without a deck header.
func ExportCards(w io.Writer, cards []domain.Card, opts Options, exportedAt time.Time) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", cardsHeader)
	fmt.Fprintf(bw, "%s%s\n", exportedPrefix, exportedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(bw, "%s\n\n", deckSeparator)
	writeCards(bw, cards, opts)
	return bw.Flush()
}

func writeCards(w io.Writer, cards []domain.Card, opts Options) {
	for i, c := range cards {
		fmt.Fprintf(w, "%s%d\n", cardPrefix, i+1)
		fmt.Fprintf(w, "%s%s\n", frontPrefix, oneLine(c.Front))
		fmt.Fprintf(w, "%s%s\n", backPrefix, oneLine(c.Back))
		fmt.Fprintf(w, "%s%s\n", subjectPrefix, c.Subject)
		if len(c.Tags) > 0 {
			fmt.Fprintf(w, "%s%s\n", tagsPrefix, strings.Join(c.Tags, ", "))
		}
		if opts.IncludeProgress {
			fmt.Fprintf(w, "%s%s\n", progressPrefix, progress(c))
		}
		fmt.Fprintf(w, "%s\n\n", cardSeparator)
	}
}

func progress(c domain.Card) string {
	parts := []string{
		"interval=" + strconv.Itoa(c.Interval),
		"easeFactor=" + strconv.FormatFloat(c.EaseFactor, 'f', -1, 64),
		"reviewCount=" + strconv.Itoa(c.ReviewCount),
	}
	if c.NextReview != nil {
		parts = append(parts, "nextReview="+strconv.FormatInt(c.NextReview.UnixMilli(), 10))
	}
	if c.DifficultyScore != nil {
		parts = append(parts, "difficultyScore="+strconv.FormatFloat(*c.DifficultyScore, 'f', -1, 64))
	}
	return strings.Join(parts, ", ")
}

// oneLine keeps a field on a single line; the format has no escaping.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
