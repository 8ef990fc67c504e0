package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/luvfam/familing/models"
)

type fakeGenerator struct {
	texts      []string
	err        error
	calls      int
	lastPrompt string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) ([]string, error) {
	g.calls++
	g.lastPrompt = prompt
	if g.err != nil {
		return nil, g.err
	}
	return g.texts, nil
}

func TestGenerationJob_CreatesDraft(t *testing.T) {
	engine, topics, _ := newTestEngine(t)
	gen := &fakeGenerator{texts: []string{`1. "가족과 함께한 최고의 순간은?"`}}
	job := NewGenerationJob(gen, engine, []int{40, 40, 20}, zap.NewNop().Sugar())

	require.NoError(t, job.Run(context.Background(), time.Now()))

	drafts := topics.byStatus(models.TopicStatusDraft)
	require.Len(t, drafts, 1)
	assert.Equal(t, "가족과 함께한 최고의 순간은?", drafts[0].Question)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerationJob_PromptAvoidsRecentQuestions(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	_, err := engine.CreateDraft("어제 가장 기뻤던 순간은?", LevelLight)
	require.NoError(t, err)

	gen := &fakeGenerator{texts: []string{"요즘 배우고 싶은 것은?"}}
	job := NewGenerationJob(gen, engine, nil, zap.NewNop().Sugar())

	require.NoError(t, job.Run(context.Background(), time.Now()))
	assert.Contains(t, gen.lastPrompt, "어제 가장 기뻤던 순간은?")
	assert.Contains(t, gen.lastPrompt, "피하세요")
}

func TestGenerationJob_GeneratorFailureLeavesNoDraft(t *testing.T) {
	engine, topics, _ := newTestEngine(t)
	gen := &fakeGenerator{err: errors.New("connection refused")}
	job := NewGenerationJob(gen, engine, nil, zap.NewNop().Sugar())

	err := job.Run(context.Background(), time.Now())
	assert.Error(t, err)
	assert.Empty(t, topics.byStatus(models.TopicStatusDraft))
}

func TestGenerationJob_NoCandidatesLeavesNoDraft(t *testing.T) {
	engine, topics, _ := newTestEngine(t)
	gen := &fakeGenerator{texts: nil}
	job := NewGenerationJob(gen, engine, nil, zap.NewNop().Sugar())

	err := job.Run(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Empty(t, topics.byStatus(models.TopicStatusDraft))
}

func TestGenerationJob_UnsanitizableOutputLeavesNoDraft(t *testing.T) {
	engine, topics, _ := newTestEngine(t)
	gen := &fakeGenerator{texts: []string{`"???"`}}
	job := NewGenerationJob(gen, engine, nil, zap.NewNop().Sugar())

	err := job.Run(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrInvalidQuestion)
	assert.Empty(t, topics.byStatus(models.TopicStatusDraft))
}

func TestActivationJob_FiresOnChangeOnPromotion(t *testing.T) {
	engine, topics, _ := newTestEngine(t)
	_, err := engine.CreateDraft("오늘 가장 기억에 남는 순간은?", LevelLight)
	require.NoError(t, err)

	changed := 0
	job := NewActivationJob(engine, zap.NewNop().Sugar(), func() { changed++ })

	now := time.Now()
	require.NoError(t, job.Run(context.Background(), now))
	assert.Equal(t, 1, changed)
	assert.Equal(t, 1, topics.activeCount())

	// no-op run with a topic already active must not fire the hook
	require.NoError(t, job.Run(context.Background(), now))
	assert.Equal(t, 1, changed)
}

func TestActivationJob_NoDraftIsQuietNoop(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	changed := 0
	job := NewActivationJob(engine, zap.NewNop().Sugar(), func() { changed++ })

	require.NoError(t, job.Run(context.Background(), time.Now()))
	assert.Zero(t, changed)
}

func TestExpiryJob_FiresOnChangeOnlyWhenSomethingExpired(t *testing.T) {
	engine, topics, _ := newTestEngine(t)
	_, err := engine.CreateDraft("요즘 가장 고마운 사람은?", LevelWarm)
	require.NoError(t, err)

	activatedAt := time.Now().Add(-4 * 24 * time.Hour)
	_, err = engine.ActivateNext(activatedAt)
	require.NoError(t, err)

	changed := 0
	job := NewExpiryJob(engine, zap.NewNop().Sugar(), func() { changed++ })

	require.NoError(t, job.Run(context.Background(), time.Now()))
	assert.Equal(t, 1, changed)
	assert.Zero(t, topics.activeCount())

	// second sweep finds nothing and stays silent
	require.NoError(t, job.Run(context.Background(), time.Now()))
	assert.Equal(t, 1, changed)
}

func TestJobs_NilOnChangeIsSafe(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	_, err := engine.CreateDraft("가장 좋아하는 계절은 언제인가요?", LevelLight)
	require.NoError(t, err)

	activation := NewActivationJob(engine, zap.NewNop().Sugar(), nil)
	require.NoError(t, activation.Run(context.Background(), time.Now().Add(-4*24*time.Hour)))

	expiry := NewExpiryJob(engine, zap.NewNop().Sugar(), nil)
	require.NoError(t, expiry.Run(context.Background(), time.Now()))
}
