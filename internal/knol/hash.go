package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/knolstudy/internal/domain"
)

// Normalize concatenates the card's front and back after cleaning each part.
// It trims whitespace, lowercases, and normalizes line endings for each side
// before joining them. Scheduling state and tags are not part of a card's
// identity.
func Normalize(card domain.Card) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	// Joined with a newline so "ab"+"c" and "a"+"bc" stay distinct.
	return normalizePart(card.Front) + "\n" + normalizePart(card.Back)
}

// Hash takes a card, normalizes it, and returns its SHA-256 hash as a hex string.
func Hash(card domain.Card) string {
	normalized := Normalize(card)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}

// Index maps the content hash of each card to its id.
func Index(cards []domain.Card) map[string]string {
	idx := make(map[string]string, len(cards))
	for _, c := range cards {
		h := Hash(c)
		if _, ok := idx[h]; !ok {
			idx[h] = c.ID
		}
	}
	return idx
}
