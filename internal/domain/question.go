package domain

import (
	"fmt"
	"time"
)

// QuestionType selects how a question is answered and graded.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	Identification QuestionType = "identification"
)

// PartialCreditMode selects how a multi-answer question awards credit.
type PartialCreditMode string

const (
	Proportional PartialCreditMode = "proportional"
	AllOrNothing PartialCreditMode = "all-or-nothing"
)

// Literal answers accepted for true-false questions.
const (
	AnswerTrue  = "True"
	AnswerFalse = "False"
)

// Question is a single test item. It must not change while a test attempt
// is in progress.
type Question struct {
	ID                string            `json:"id" validate:"required"`
	Type              QuestionType      `json:"type" validate:"required,oneof=multiple-choice true-false identification"`
	Prompt            string            `json:"question"`
	Options           []string          `json:"options,omitempty"`
	CorrectAnswer     []string          `json:"correctAnswer" validate:"required,min=1"`
	CaseSensitive     bool              `json:"caseSensitive,omitempty"`
	PartialCredit     bool              `json:"partialCredit,omitempty"`
	PartialCreditMode PartialCreditMode `json:"partialCreditMode,omitempty" validate:"omitempty,oneof=proportional all-or-nothing"`
	Explanation       string            `json:"explanation,omitempty"`
	Subject           string            `json:"subject"`
	Tags              []string          `json:"tags"`
}

// OptionLetter returns the positional label of the option at index i
// (0 → "A", 1 → "B", ...).
func OptionLetter(i int) string {
	return string(rune('A' + i))
}

// CreditMode returns the effective partial-credit mode. Questions with
// partial credit enabled but no explicit mode award proportional credit.
func (q Question) CreditMode() PartialCreditMode {
	if q.PartialCreditMode == "" {
		return Proportional
	}
	return q.PartialCreditMode
}

// Validate checks the struct tags plus the per-type shape rules.
func (q Question) Validate() error {
	if err := Validate(q); err != nil {
		return err
	}
	switch q.Type {
	case MultipleChoice:
		if len(q.Options) == 0 {
			return NewValidationError("options", fmt.Sprintf("multiple-choice question %s has no options", q.ID))
		}
		if len(q.Options) > 26 {
			return NewValidationError("options", fmt.Sprintf("question %s has more than 26 options", q.ID))
		}
		valid := make(map[string]bool, len(q.Options))
		for i := range q.Options {
			valid[OptionLetter(i)] = true
		}
		for _, ans := range q.CorrectAnswer {
			if !valid[ans] {
				return NewValidationError("correctAnswer", fmt.Sprintf("letter %q does not index an option of question %s", ans, q.ID))
			}
		}
	case TrueFalse:
		for _, ans := range q.CorrectAnswer {
			if ans != AnswerTrue && ans != AnswerFalse {
				return NewValidationError("correctAnswer", fmt.Sprintf("true-false answer must be %q or %q, got %q", AnswerTrue, AnswerFalse, ans))
			}
		}
	}
	return nil
}

// Test is an ordered list of questions with an optional time limit.
type Test struct {
	ID          string     `json:"id" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	Subject     string     `json:"subject"`
	Questions   []Question `json:"questions" validate:"dive"`
	// TimeLimit is in minutes; zero means untimed.
	TimeLimit int       `json:"timeLimit,omitempty" validate:"gte=0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Duration returns the time limit as a duration, zero when untimed.
func (t Test) Duration() time.Duration {
	return time.Duration(t.TimeLimit) * time.Minute
}

// TestResult is written once per submitted attempt and never changed.
type TestResult struct {
	ID             string              `json:"id"`
	TestID         string              `json:"testId"`
	Answers        map[string][]string `json:"answers"`
	Score          float64             `json:"score"`
	TotalQuestions int                 `json:"totalQuestions"`
	CompletedAt    time.Time           `json:"completedAt"`
}
