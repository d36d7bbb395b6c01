package exam

import (
	"testing"
	"time"

	"github.com/conorfennell/knolstudy/internal/clock"
	"github.com/conorfennell/knolstudy/internal/domain"
	"github.com/conorfennell/knolstudy/internal/ident"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func sampleTest(limit int) domain.Test {
	return domain.Test{
		ID:        "t1",
		Title:     "Capitals",
		TimeLimit: limit,
		Questions: []domain.Question{
			{ID: "q1", Type: domain.Identification, CorrectAnswer: []string{"Paris"}},
			{ID: "q2", Type: domain.TrueFalse, CorrectAnswer: []string{"True"}},
		},
	}
}

func TestAttempt_SubmitGrades(t *testing.T) {
	clk := clock.NewManual(start)
	a, err := Start(sampleTest(0), clk, &ident.Sequence{Prefix: "result"}, nil)
	require.NoError(t, err)

	require.NoError(t, a.SetAnswer("q1", []string{"paris"}))
	require.NoError(t, a.SetAnswer("q2", []string{"False"}))
	clk.Advance(3 * time.Minute)

	res, err := a.Submit()
	require.NoError(t, err)
	assert.Equal(t, "result-1", res.ID)
	assert.Equal(t, "t1", res.TestID)
	assert.Equal(t, 50.0, res.Score)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, start.Add(3*time.Minute), res.CompletedAt)
	assert.Equal(t, map[string][]string{"q1": {"paris"}, "q2": {"False"}}, res.Answers)

	_, err = a.Submit()
	assert.ErrorIs(t, err, ErrFinished)
	assert.ErrorIs(t, a.SetAnswer("q1", []string{"x"}), ErrFinished)
}

func TestAttempt_UntimedHasNoTimer(t *testing.T) {
	clk := clock.NewManual(start)
	a, err := Start(sampleTest(0), clk, nil, nil)
	require.NoError(t, err)

	_, ok := a.Remaining()
	assert.False(t, ok)
	assert.Equal(t, 0, clk.Pending())
}

func TestAttempt_TimerSubmitsOnExpiry(t *testing.T) {
	clk := clock.NewManual(start)
	var got *domain.TestResult
	a, err := Start(sampleTest(5), clk, &ident.Sequence{Prefix: "r"}, func(res domain.TestResult, err error) {
		require.NoError(t, err)
		got = &res
	})
	require.NoError(t, err)
	require.NoError(t, a.SetAnswer("q2", []string{"True"}))

	clk.Advance(2 * time.Minute)
	left, ok := a.Remaining()
	require.True(t, ok)
	assert.Equal(t, 3*time.Minute, left)
	assert.Nil(t, got)

	clk.Advance(3 * time.Minute)
	require.NotNil(t, got)
	assert.Equal(t, 50.0, got.Score)
	assert.True(t, a.Finished())

	left, _ = a.Remaining()
	assert.Equal(t, time.Duration(0), left)
}

func TestAttempt_SubmitCancelsTimer(t *testing.T) {
	clk := clock.NewManual(start)
	expired := false
	a, err := Start(sampleTest(5), clk, nil, func(domain.TestResult, error) { expired = true })
	require.NoError(t, err)

	_, err = a.Submit()
	require.NoError(t, err)
	assert.Equal(t, 0, clk.Pending())

	clk.Advance(time.Hour)
	assert.False(t, expired)
}

func TestAttempt_CancelStopsTimer(t *testing.T) {
	clk := clock.NewManual(start)
	expired := false
	a, err := Start(sampleTest(1), clk, nil, func(domain.TestResult, error) { expired = true })
	require.NoError(t, err)

	a.Cancel()
	clk.Advance(time.Hour)
	assert.False(t, expired)
	assert.True(t, a.Finished())

	_, err = a.Submit()
	assert.ErrorIs(t, err, ErrFinished)
}

func TestAttempt_RejectsUnknownQuestion(t *testing.T) {
	a, err := Start(sampleTest(0), clock.NewManual(start), nil, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, a.SetAnswer("q9", []string{"x"}), domain.ErrValidation)
}

func TestStart_ValidatesQuestions(t *testing.T) {
	test := sampleTest(0)
	test.Questions = append(test.Questions, domain.Question{ID: "q3", Type: domain.MultipleChoice, CorrectAnswer: []string{"A"}})

	_, err := Start(test, clock.NewManual(start), nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
