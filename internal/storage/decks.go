package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/conorfennell/knolstudy/internal/domain"
)

const deckColumns = `id, name, description, subject, color, created_at, updated_at`

func scanDeck(row scanner) (domain.Deck, error) {
	var d domain.Deck
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Subject, &d.Color, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// LoadDecks retrieves every deck in collection order.
func (db *DB) LoadDecks(ctx context.Context) ([]domain.Deck, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+deckColumns+` FROM decks ORDER BY position, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to load decks: %w", err)
	}
	defer rows.Close()

	var decks []domain.Deck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// GetDeck retrieves a deck by id.
func (db *DB) GetDeck(ctx context.Context, id string) (domain.Deck, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+deckColumns+` FROM decks WHERE id = ?`, id)
	d, err := scanDeck(row)
	if err == sql.ErrNoRows {
		return domain.Deck{}, fmt.Errorf("deck %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Deck{}, fmt.Errorf("failed to find deck %s: %w", id, err)
	}
	return d, nil
}

// FindDeckByName retrieves the first deck called name, or nil if none is.
func (db *DB) FindDeckByName(ctx context.Context, name string) (*domain.Deck, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+deckColumns+` FROM decks WHERE name = ? ORDER BY position, rowid LIMIT 1`, name)
	d, err := scanDeck(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Deck not found
		}
		return nil, fmt.Errorf("failed to find deck by name %s: %w", name, err)
	}
	return &d, nil
}

const insertDeck = `INSERT INTO decks (` + deckColumns + `, position) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// InsertDeck appends a deck to the collection.
func (db *DB) InsertDeck(ctx context.Context, d domain.Deck) error {
	_, err := db.conn.ExecContext(ctx, `INSERT INTO decks (`+deckColumns+`, position)
		SELECT ?, ?, ?, ?, ?, ?, ?, COALESCE(MAX(position), -1) + 1 FROM decks`,
		d.ID, d.Name, d.Description, d.Subject, d.Color, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert deck %s: %w", d.ID, err)
	}
	return nil
}

// SaveDecks replaces the whole deck collection. Cards are not touched.
func (db *DB) SaveDecks(ctx context.Context, decks []domain.Deck) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM decks`); err != nil {
			return fmt.Errorf("failed to clear decks: %w", err)
		}
		for i, d := range decks {
			if _, err := tx.ExecContext(ctx, insertDeck,
				d.ID, d.Name, d.Description, d.Subject, d.Color, d.CreatedAt, d.UpdatedAt, i,
			); err != nil {
				return fmt.Errorf("failed to insert deck %s: %w", d.ID, err)
			}
		}
		return nil
	})
}

// DeleteDeck removes a deck together with all of its cards.
func (db *DB) DeleteDeck(ctx context.Context, id string) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE deck_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete cards of deck %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete deck %s: %w", id, err)
		}
		return nil
	})
}
