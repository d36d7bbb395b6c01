package textio

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/conorfennell/knolstudy/internal/domain"
)

// ParsedDeck is the deck header and cards read from an export. Ids, deck
// ids and timestamps are left for the caller to assign.
type ParsedDeck struct {
	Deck  domain.Deck
	Cards []domain.Card
}

type state int

const (
	readingHeader state = iota
	seekingCard
	readingCard
)

// ParseFile reads a deck export from the given path.
func ParseFile(path string) (ParsedDeck, error) {
	file, err := os.Open(path)
	if err != nil {
		return ParsedDeck{}, err
	}
	defer file.Close()

	return ImportDeck(file)
}

// ImportDeck reads a deck export. Cards missing a front or a back are
// skipped.
func ImportDeck(r io.Reader) (ParsedDeck, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var parsed ParsedDeck
	var current domain.Card
	currentState := readingHeader

	finishCard := func() {
		if current.Front != "" && current.Back != "" {
			parsed.Cards = append(parsed.Cards, current)
		}
		current = domain.Card{}
		currentState = seekingCard
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch currentState {
		case readingHeader:
			switch {
			case line == deckSeparator:
				currentState = seekingCard
			case strings.HasPrefix(line, cardPrefix):
				// Headerless file.
				current = blankCard()
				currentState = readingCard
			case strings.HasPrefix(line, deckPrefix):
				parsed.Deck.Name = line[len(deckPrefix):]
			case strings.HasPrefix(line, subjectPrefix):
				parsed.Deck.Subject = line[len(subjectPrefix):]
			case strings.HasPrefix(line, descriptionPrefix):
				parsed.Deck.Description = line[len(descriptionPrefix):]
			case strings.HasPrefix(line, createdPrefix):
				if t, err := time.Parse(time.RFC3339, line[len(createdPrefix):]); err == nil {
					parsed.Deck.CreatedAt = t
				}
			}
		case seekingCard:
			if strings.HasPrefix(line, cardPrefix) {
				current = blankCard()
				currentState = readingCard
			}
		case readingCard:
			switch {
			case line == cardSeparator:
				finishCard()
			case strings.HasPrefix(line, cardPrefix):
				// A new card without a separator closes the previous one.
				finishCard()
				current = blankCard()
				currentState = readingCard
			case strings.HasPrefix(line, frontPrefix):
				current.Front = line[len(frontPrefix):]
			case strings.HasPrefix(line, backPrefix):
				current.Back = line[len(backPrefix):]
			case strings.HasPrefix(line, subjectPrefix):
				current.Subject = line[len(subjectPrefix):]
			case strings.HasPrefix(line, tagsPrefix):
				current.Tags = parseTags(line[len(tagsPrefix):])
			case strings.HasPrefix(line, progressPrefix):
				applyProgress(&current, line[len(progressPrefix):])
			}
		}
	}

	if currentState == readingCard {
		finishCard() // Finish a last card that has no closing separator
	}

	if err := scanner.Err(); err != nil {
		return ParsedDeck{}, err
	}

	return parsed, nil
}

// ImportCards reads the cards of either export kind and ignores the header.
func ImportCards(r io.Reader) ([]domain.Card, error) {
	parsed, err := ImportDeck(r)
	if err != nil {
		return nil, err
	}
	return parsed.Cards, nil
}

func blankCard() domain.Card {
	return domain.Card{Tags: []string{}, EaseFactor: domain.DefaultEaseFactor}
}

func parseTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// applyProgress reads "key=value" pairs. Unknown keys, unparsable values and
// non-finite numbers are ignored; parsed values are clamped to the card
// invariants.
func applyProgress(c *domain.Card, s string) {
	for _, part := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "interval":
			if n, err := strconv.Atoi(value); err == nil {
				c.Interval = min(max(n, 0), domain.MaxInterval)
			}
		case "easeFactor":
			if f, ok := parseFinite(value); ok {
				c.EaseFactor = max(f, domain.MinEaseFactor)
			}
		case "reviewCount":
			if n, err := strconv.Atoi(value); err == nil {
				c.ReviewCount = max(n, 0)
			}
		case "nextReview":
			if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
				t := time.UnixMilli(ms).UTC()
				c.NextReview = &t
			}
		case "difficultyScore":
			if f, ok := parseFinite(value); ok {
				f = min(max(f, 0), 1)
				c.DifficultyScore = &f
			}
		}
	}
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
