package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/conorfennell/knolstudy/internal/domain"
)

const cardColumns = `id, deck_id, front, back, subject, tags, interval, ease_factor,
	difficulty_score, next_review, review_count, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (domain.Card, error) {
	var (
		c          domain.Card
		tags       string
		difficulty sql.NullFloat64
		nextReview sql.NullTime
	)
	err := row.Scan(
		&c.ID,
		&c.DeckID,
		&c.Front,
		&c.Back,
		&c.Subject,
		&tags,
		&c.Interval,
		&c.EaseFactor,
		&difficulty,
		&nextReview,
		&c.ReviewCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return domain.Card{}, err
	}
	if c.Tags, err = decodeTags(tags); err != nil {
		return domain.Card{}, fmt.Errorf("failed to decode tags of card %s: %w", c.ID, err)
	}
	if difficulty.Valid {
		d := difficulty.Float64
		c.DifficultyScore = &d
	}
	if nextReview.Valid {
		t := nextReview.Time
		c.NextReview = &t
	}
	return c, nil
}

func cardArgs(c domain.Card) ([]any, error) {
	tags, err := encodeTags(c.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags of card %s: %w", c.ID, err)
	}
	var difficulty sql.NullFloat64
	if c.DifficultyScore != nil {
		difficulty = sql.NullFloat64{Float64: *c.DifficultyScore, Valid: true}
	}
	var nextReview sql.NullTime
	if c.NextReview != nil {
		nextReview = sql.NullTime{Time: *c.NextReview, Valid: true}
	}
	return []any{
		c.ID, c.DeckID, c.Front, c.Back, c.Subject, tags, c.Interval, c.EaseFactor,
		difficulty, nextReview, c.ReviewCount, c.CreatedAt, c.UpdatedAt,
	}, nil
}

func (db *DB) queryCards(ctx context.Context, where string, args ...any) ([]domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards `+where+` ORDER BY position, rowid`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// LoadCards retrieves every flashcard in collection order.
func (db *DB) LoadCards(ctx context.Context) ([]domain.Card, error) {
	cards, err := db.queryCards(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	return cards, nil
}

// LoadDeckCards retrieves the flashcards of one deck.
func (db *DB) LoadDeckCards(ctx context.Context, deckID string) ([]domain.Card, error) {
	cards, err := db.queryCards(ctx, "WHERE deck_id = ?", deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards for deck %s: %w", deckID, err)
	}
	return cards, nil
}

// GetCard retrieves a single card by id.
func (db *DB) GetCard(ctx context.Context, id string) (domain.Card, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err == sql.ErrNoRows {
		return domain.Card{}, fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Card{}, fmt.Errorf("failed to find card %s: %w", id, err)
	}
	return c, nil
}

const insertCard = `INSERT INTO cards (` + cardColumns + `, position)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SaveCards replaces the whole flashcard collection with cards.
func (db *DB) SaveCards(ctx context.Context, cards []domain.Card) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
			return fmt.Errorf("failed to clear cards: %w", err)
		}
		for i, c := range cards {
			args, err := cardArgs(c)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, insertCard, append(args, i)...); err != nil {
				return fmt.Errorf("failed to insert card %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// InsertCards appends new cards after the existing ones.
func (db *DB) InsertCards(ctx context.Context, cards []domain.Card) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM cards`).Scan(&next); err != nil {
			return fmt.Errorf("failed to read card position: %w", err)
		}
		for i, c := range cards {
			args, err := cardArgs(c)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, insertCard, append(args, next+i)...); err != nil {
				return fmt.Errorf("failed to insert card %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// MergeCards overwrites stored cards that share an id with one of cards and
// leaves every other card untouched. Cards that no longer exist are not
// recreated. It returns how many cards were replaced.
func (db *DB) MergeCards(ctx context.Context, cards []domain.Card) (int, error) {
	var merged int
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range cards {
			args, err := cardArgs(c)
			if err != nil {
				return err
			}
			// Drop id from the front and append it for the WHERE clause.
			res, err := tx.ExecContext(ctx, `
				UPDATE cards
				SET deck_id = ?, front = ?, back = ?, subject = ?, tags = ?, interval = ?, ease_factor = ?,
					difficulty_score = ?, next_review = ?, review_count = ?, created_at = ?, updated_at = ?
				WHERE id = ?
			`, append(args[1:], c.ID)...)
			if err != nil {
				return fmt.Errorf("failed to update card %s: %w", c.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to update card %s: %w", c.ID, err)
			}
			merged += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return merged, nil
}

// DeleteCard removes a card by id.
func (db *DB) DeleteCard(ctx context.Context, id string) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	return nil
}
