package services

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// The three periodic jobs run on independent timers with no shared in-process
// state. Cadence is configuration; correctness lives entirely in each Run
// method, which takes an injected now so tests can drive the clock.

// GenerationJob procures one new draft question per day from the generation
// service. Every failure is transient by design: the run logs and aborts, no
// topic is written, and tomorrow's run is the retry.
type GenerationJob struct {
	gen     Generator
	engine  *TopicLifecycle
	weights []int
	rng     *rand.Rand
	log     *zap.SugaredLogger
}

// NewGenerationJob wires the daily question generation job.
func NewGenerationJob(gen Generator, engine *TopicLifecycle, weights []int, log *zap.SugaredLogger) *GenerationJob {
	return &GenerationJob{
		gen:     gen,
		engine:  engine,
		weights: weights,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     log,
	}
}

// recentAvoidCount is how many recent questions the prompt tells the model to avoid.
const recentAvoidCount = 10

// Run performs a single generation attempt.
func (j *GenerationJob) Run(ctx context.Context, now time.Time) error {
	level := PickLevel(j.weights, j.rng)
	prompt := WithAvoidList(BuildPrompt(level), j.engine.RecentQuestions(recentAvoidCount))

	candidates, err := j.gen.Generate(ctx, prompt)
	if err != nil {
		j.log.Warnw("question generation failed", "level", level, "err", err)
		return err
	}
	if len(candidates) == 0 {
		j.log.Warnw("generator returned no candidates", "level", level)
		return ErrEmptyResponse
	}

	question := SanitizeQuestion(candidates[0])
	if question == "" {
		j.log.Warnw("generated question empty after sanitization", "level", level, "raw", candidates[0])
		return ErrInvalidQuestion
	}

	topic, err := j.engine.CreateDraft(question, level)
	if err != nil {
		j.log.Errorw("draft creation failed", "err", err)
		return err
	}
	j.log.Infow("draft topic created", "topic_id", topic.ID, "level", level, "question", question)
	return nil
}

// Start launches the job loop firing once per day at the given hour.
func (j *GenerationJob) Start(ctx context.Context, hour int) {
	go runDailyAt(ctx, hour, func(now time.Time) {
		_ = j.Run(ctx, now) // failures already logged; next day retries
	})
}

// ActivationJob promotes the oldest draft when no topic is active. Both
// possible no-ops (already active, nothing queued) are steady state.
type ActivationJob struct {
	engine   *TopicLifecycle
	log      *zap.SugaredLogger
	onChange func()
}

// NewActivationJob wires the daily activation job. onChange fires after a
// successful promotion, typically to drop the active-topic cache; nil is fine.
func NewActivationJob(engine *TopicLifecycle, log *zap.SugaredLogger, onChange func()) *ActivationJob {
	return &ActivationJob{engine: engine, log: log, onChange: onChange}
}

// Run performs a single activation attempt.
func (j *ActivationJob) Run(ctx context.Context, now time.Time) error {
	topic, err := j.engine.ActivateNext(now)
	if err != nil {
		j.log.Errorw("topic activation failed", "err", err)
		return err
	}
	if topic == nil {
		j.log.Debugw("activation no-op", "now", now)
		return nil
	}
	if j.onChange != nil {
		j.onChange()
	}
	j.log.Infow("topic activated", "topic_id", topic.ID, "active_until", topic.ActiveUntil)
	return nil
}

// Start launches the job loop firing once per day at the given hour.
func (j *ActivationJob) Start(ctx context.Context, hour int) {
	go runDailyAt(ctx, hour, func(now time.Time) {
		_ = j.Run(ctx, now)
	})
}

// ExpiryJob bulk-expires active topics whose window elapsed. Harmlessly
// idempotent, so it runs on a short interval rather than a daily slot.
type ExpiryJob struct {
	engine   *TopicLifecycle
	log      *zap.SugaredLogger
	onChange func()
}

// NewExpiryJob wires the expiry sweep job. onChange fires after at least one
// topic expired; nil is fine.
func NewExpiryJob(engine *TopicLifecycle, log *zap.SugaredLogger, onChange func()) *ExpiryJob {
	return &ExpiryJob{engine: engine, log: log, onChange: onChange}
}

// Run performs a single expiry sweep.
func (j *ExpiryJob) Run(ctx context.Context, now time.Time) error {
	count, err := j.engine.ExpireOverdue(now)
	if err != nil {
		j.log.Errorw("topic expiry sweep failed", "err", err)
		return err
	}
	if count > 0 {
		if j.onChange != nil {
			j.onChange()
		}
		j.log.Infow("topics expired", "count", count)
	}
	return nil
}

// Start launches the sweep loop on the given interval.
func (j *ExpiryJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				_ = j.Run(ctx, now)
			}
		}
	}()
}

// runDailyAt invokes fn once per day at the given local hour.
func runDailyAt(ctx context.Context, hour int, fn func(now time.Time)) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case fired := <-timer.C:
			fn(fired)
		}
	}
}
