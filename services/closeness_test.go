package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luvfam/familing/models"
)

func seedAnswers(answers *fakeAnswerStore, familyID, userID uint, count int, createdAt time.Time) {
	for i := 0; i < count; i++ {
		_ = answers.Create(&models.Answer{
			TopicID:   uint(1000*int(userID) + i), // distinct topics per answer
			UserID:    userID,
			FamilyID:  familyID,
			Content:   "답변입니다",
			CreatedAt: createdAt,
		})
	}
}

func TestCloseness_FamilyScenario(t *testing.T) {
	answers := newFakeAnswerStore()
	ranker := NewRanker(answers)

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)
	seedAnswers(answers, 1, 10, 5, recent)
	seedAnswers(answers, 1, 11, 5, recent)
	seedAnswers(answers, 1, 12, 2, recent)

	top, err := ranker.Closeness(10, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 100, top.Percentage)
	assert.Equal(t, 5, top.MyCount)
	assert.Equal(t, 5, top.FamilyMaxCount)
	assert.Equal(t, 1, top.Rank)

	// the tied member shares the first-match rank
	tied, err := ranker.Closeness(11, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 1, tied.Rank)
	assert.Equal(t, 100, tied.Percentage)

	low, err := ranker.Closeness(12, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 40, low.Percentage)
	assert.Equal(t, 2, low.MyCount)
	assert.Equal(t, 5, low.FamilyMaxCount)
	assert.Equal(t, 2, low.Rank)
}

func TestCloseness_NoParticipation(t *testing.T) {
	answers := newFakeAnswerStore()
	ranker := NewRanker(answers)

	now := time.Now()
	seedAnswers(answers, 1, 11, 3, now.Add(-time.Hour))

	// family is active but this member never answered
	_, err := ranker.Closeness(10, 1, now)
	assert.ErrorIs(t, err, ErrNoParticipation)
}

func TestCloseness_NoFamilyActivity(t *testing.T) {
	answers := newFakeAnswerStore()
	ranker := NewRanker(answers)

	_, err := ranker.Closeness(10, 1, time.Now())
	assert.ErrorIs(t, err, ErrNoFamilyActivity)
}

func TestCloseness_IgnoresAnswersOutsideWindow(t *testing.T) {
	answers := newFakeAnswerStore()
	ranker := NewRanker(answers)

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	seedAnswers(answers, 1, 10, 4, now.Add(-31*24*time.Hour)) // too old
	seedAnswers(answers, 1, 10, 1, now.Add(-time.Hour))
	seedAnswers(answers, 1, 11, 3, now.Add(-time.Hour))

	result, err := ranker.Closeness(10, 1, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.MyCount)
	assert.Equal(t, 3, result.FamilyMaxCount)
	assert.Equal(t, 33, result.Percentage)
	assert.Equal(t, 2, result.Rank)
}

func TestCloseness_RoundsPercentage(t *testing.T) {
	answers := newFakeAnswerStore()
	ranker := NewRanker(answers)

	now := time.Now()
	seedAnswers(answers, 1, 10, 2, now.Add(-time.Hour))
	seedAnswers(answers, 1, 11, 3, now.Add(-time.Hour))

	result, err := ranker.Closeness(10, 1, now)
	require.NoError(t, err)
	// 2/3 -> 66.66... rounds to 67
	assert.Equal(t, 67, result.Percentage)
}
