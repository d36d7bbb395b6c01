package domain

import "time"

const (
	// DefaultEaseFactor is the ease factor every new card starts with.
	DefaultEaseFactor = 2.5
	// MinEaseFactor is the floor the ease factor is clamped to.
	MinEaseFactor = 1.3
	// NeutralDifficulty stands in for a card that has never been rated.
	NeutralDifficulty = 0.5
	// MaxInterval is the longest review interval, in days.
	MaxInterval = 365
)

// Card is a single flashcard together with its scheduling state.
type Card struct {
	ID              string     `json:"id" validate:"required"`
	DeckID          string     `json:"deckId" validate:"required"`
	Front           string     `json:"front" validate:"required"`
	Back            string     `json:"back" validate:"required"`
	Subject         string     `json:"subject"`
	Tags            []string   `json:"tags"`
	Interval        int        `json:"interval" validate:"gte=0"`
	EaseFactor      float64    `json:"easeFactor" validate:"gte=1.3"`
	DifficultyScore *float64   `json:"difficultyScore,omitempty" validate:"omitempty,gte=0,lte=1"`
	NextReview      *time.Time `json:"nextReview,omitempty"`
	ReviewCount     int        `json:"reviewCount" validate:"gte=0"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// NewCard returns a card in its initial scheduling state: never reviewed,
// immediately due.
func NewCard(id, deckID, front, back string, now time.Time) Card {
	return Card{
		ID:         id,
		DeckID:     deckID,
		Front:      front,
		Back:       back,
		Tags:       []string{},
		EaseFactor: DefaultEaseFactor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Difficulty returns the card's difficulty score, or NeutralDifficulty if
// the card has never been rated.
func (c Card) Difficulty() float64 {
	if c.DifficultyScore == nil {
		return NeutralDifficulty
	}
	return *c.DifficultyScore
}

// IsDue reports whether the card should be reviewed at now. A card that was
// never scheduled is always due.
func (c Card) IsDue(now time.Time) bool {
	return c.NextReview == nil || !c.NextReview.After(now)
}

// Clone returns a deep copy so that scheduling updates never alias the
// caller's pointers or slices.
func (c Card) Clone() Card {
	out := c
	if c.DifficultyScore != nil {
		d := *c.DifficultyScore
		out.DifficultyScore = &d
	}
	if c.NextReview != nil {
		t := *c.NextReview
		out.NextReview = &t
	}
	if c.Tags != nil {
		out.Tags = make([]string, len(c.Tags))
		copy(out.Tags, c.Tags)
	}
	return out
}

// Deck groups cards. Deleting a deck deletes its cards.
type Deck struct {
	ID          string    `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
	Subject     string    `json:"subject"`
	Color       string    `json:"color,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Note is a free-form study note. It is only persisted, never scheduled.
type Note struct {
	ID        string    `json:"id" validate:"required"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Subject   string    `json:"subject"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
