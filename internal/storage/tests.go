package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/conorfennell/knolstudy/internal/domain"
)

// answerList decodes a question's correctAnswer. Older records stored it
// as one string separated by commas or pipes.
type answerList []string

func (a *answerList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = list
		return nil
	}
	var legacy string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return fmt.Errorf("correctAnswer is neither a list nor a string: %w", err)
	}
	*a = splitLegacyAnswer(legacy)
	return nil
}

func splitLegacyAnswer(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// questionRecord shadows Question.CorrectAnswer with the migrating decoder.
type questionRecord struct {
	domain.Question
	CorrectAnswer answerList `json:"correctAnswer"`
}

func decodeQuestions(data string) ([]domain.Question, error) {
	var records []questionRecord
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, err
	}
	questions := make([]domain.Question, len(records))
	for i, r := range records {
		q := r.Question
		q.CorrectAnswer = []string(r.CorrectAnswer)
		questions[i] = q
	}
	return questions, nil
}

const testColumns = `id, title, description, subject, time_limit, questions, created_at, updated_at`

func scanTest(row scanner) (domain.Test, error) {
	var (
		t         domain.Test
		questions string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Subject, &t.TimeLimit, &questions, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Test{}, err
	}
	qs, err := decodeQuestions(questions)
	if err != nil {
		return domain.Test{}, fmt.Errorf("failed to decode questions of test %s: %w", t.ID, err)
	}
	t.Questions = qs
	return t, nil
}

// LoadTests retrieves every test in collection order.
func (db *DB) LoadTests(ctx context.Context) ([]domain.Test, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+testColumns+` FROM tests ORDER BY position, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to load tests: %w", err)
	}
	defer rows.Close()

	var tests []domain.Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan test row: %w", err)
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// GetTest retrieves a test by id.
func (db *DB) GetTest(ctx context.Context, id string) (domain.Test, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+testColumns+` FROM tests WHERE id = ?`, id)
	t, err := scanTest(row)
	if err == sql.ErrNoRows {
		return domain.Test{}, fmt.Errorf("test %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return domain.Test{}, fmt.Errorf("failed to find test %s: %w", id, err)
	}
	return t, nil
}

// SaveTests replaces the whole test collection.
func (db *DB) SaveTests(ctx context.Context, tests []domain.Test) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tests`); err != nil {
			return fmt.Errorf("failed to clear tests: %w", err)
		}
		for i, t := range tests {
			questions := t.Questions
			if questions == nil {
				questions = []domain.Question{}
			}
			data, err := encodeJSON(questions)
			if err != nil {
				return fmt.Errorf("failed to encode questions of test %s: %w", t.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO tests (`+testColumns+`, position) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, t.Title, t.Description, t.Subject, t.TimeLimit, data, t.CreatedAt, t.UpdatedAt, i,
			); err != nil {
				return fmt.Errorf("failed to insert test %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// LoadTestResults retrieves results in submission order, optionally only
// those of testID.
func (db *DB) LoadTestResults(ctx context.Context, testID string) ([]domain.TestResult, error) {
	query := `SELECT id, test_id, answers, score, total_questions, completed_at FROM test_results`
	var args []any
	if testID != "" {
		query += ` WHERE test_id = ?`
		args = append(args, testID)
	}
	rows, err := db.conn.QueryContext(ctx, query+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load test results: %w", err)
	}
	defer rows.Close()

	var results []domain.TestResult
	for rows.Next() {
		var (
			r       domain.TestResult
			answers string
		)
		if err := rows.Scan(&r.ID, &r.TestID, &answers, &r.Score, &r.TotalQuestions, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan test result row: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &r.Answers); err != nil {
			return nil, fmt.Errorf("failed to decode answers of result %s: %w", r.ID, err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// AppendTestResult adds a result to the log. Results are never updated.
func (db *DB) AppendTestResult(ctx context.Context, r domain.TestResult) error {
	answers := r.Answers
	if answers == nil {
		answers = map[string][]string{}
	}
	data, err := encodeJSON(answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers of result %s: %w", r.ID, err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO test_results (id, test_id, answers, score, total_questions, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.TestID, data, r.Score, r.TotalQuestions, r.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert test result %s: %w", r.ID, err)
	}
	return nil
}
