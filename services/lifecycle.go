package services

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/luvfam/familing/models"
	"github.com/luvfam/familing/store"
	"github.com/luvfam/familing/utils"
)

// Answer content is bounded to this many runes.
const maxAnswerRunes = 4000

// TopicLifecycle owns the draft -> active -> expired state machine and the
// answer upsert contract. All cross-job coordination goes through the topic
// rows themselves; the engine holds no mutable state, so jobs on separate
// processes can share a database safely.
type TopicLifecycle struct {
	topics  store.TopicStore
	answers store.AnswerStore
	window  time.Duration
	log     *zap.SugaredLogger
}

// NewTopicLifecycle builds an engine with the given activation window.
func NewTopicLifecycle(topics store.TopicStore, answers store.AnswerStore, activeDays int, log *zap.SugaredLogger) *TopicLifecycle {
	if activeDays <= 0 {
		activeDays = 3
	}
	return &TopicLifecycle{
		topics:  topics,
		answers: answers,
		window:  time.Duration(activeDays) * 24 * time.Hour,
		log:     log,
	}
}

// CreateDraft persists a new draft topic with no activation window assigned.
// The question must already be sanitized; an empty question is a data
// integrity violation, not a storable value.
func (e *TopicLifecycle) CreateDraft(question string, level int) (*models.Topic, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrInvalidQuestion
	}
	topic := &models.Topic{
		Question: question,
		Status:   models.TopicStatusDraft,
		Level:    level,
	}
	if err := e.topics.Save(topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// ActivateNext promotes the oldest draft when no topic is currently active.
// Both no-draft-queued and already-active are expected steady states and
// return (nil, nil). The store re-checks the single-active invariant inside
// the promoting transaction, so racing schedulers cannot double-activate.
func (e *TopicLifecycle) ActivateNext(now time.Time) (*models.Topic, error) {
	_, err := e.topics.FindCurrentActive(now)
	switch {
	case err == nil:
		return nil, nil // a topic is already active
	case errors.Is(err, store.ErrMultipleActive):
		e.log.Errorw("active topic invariant violated", "err", err)
		return nil, err
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	draft, err := e.topics.FindOldestDraft()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil // nothing queued, degraded but non-fatal
		}
		return nil, err
	}

	until := now.Add(e.window)
	activated, err := e.topics.Activate(draft.ID, now, until)
	if err != nil {
		return nil, err
	}
	if !activated {
		// Lost the race to a concurrent scheduler; the invariant still holds.
		return nil, nil
	}

	draft.Status = models.TopicStatusActive
	draft.ActiveFrom = &now
	draft.ActiveUntil = &until
	return draft, nil
}

// ExpireOverdue bulk-transitions every active topic whose window elapsed.
// Safe to run at any frequency: the predicate only targets active rows, so an
// already expired topic can never be expired twice.
func (e *TopicLifecycle) ExpireOverdue(now time.Time) (int64, error) {
	return e.topics.BulkExpire(now)
}

// CurrentActive returns the unique topic whose window covers now, or
// ErrNoActiveTopic. A multiple-active detection is passed through loudly.
func (e *TopicLifecycle) CurrentActive(now time.Time) (*models.Topic, error) {
	topic, err := e.topics.FindCurrentActive(now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoActiveTopic
		}
		if errors.Is(err, store.ErrMultipleActive) {
			e.log.Errorw("active topic invariant violated", "err", err)
		}
		return nil, err
	}
	return topic, nil
}

// RecentQuestions returns the questions of the n most recently created topics
// in any state, newest first. A lookup failure degrades to an empty list; the
// caller uses this only to steer generation away from repeats.
func (e *TopicLifecycle) RecentQuestions(n int) []string {
	topics, err := e.topics.FindRecent(n)
	if err != nil {
		e.log.Warnw("recent topic lookup failed", "err", err)
		return nil
	}
	questions := make([]string, 0, len(topics))
	for i := range topics {
		questions = append(questions, topics[i].Question)
	}
	return questions
}

// UpsertAnswer is the only write path for answers: first submission creates
// the row, resubmission mutates it in place and stamps updated_at. A create
// losing the uniqueness race on (topic_id, user_id) is retried as an update,
// so concurrent submissions never duplicate.
func (e *TopicLifecycle) UpsertAnswer(topicID, userID, familyID uint, content string, now time.Time) (*models.Answer, error) {
	clean := strings.TrimSpace(utils.CleanText(content))
	if clean == "" {
		return nil, ErrEmptyAnswer
	}
	if len([]rune(clean)) > maxAnswerRunes {
		return nil, ErrAnswerTooLong
	}

	existing, err := e.answers.FindByTopicAndUser(topicID, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return e.updateAnswer(existing, clean, now)
	}

	answer := &models.Answer{
		TopicID:   topicID,
		UserID:    userID,
		FamilyID:  familyID,
		Content:   clean,
		CreatedAt: now,
	}
	err = e.answers.Create(answer)
	if err == nil {
		return answer, nil
	}
	if !errors.Is(err, store.ErrDuplicate) {
		return nil, err
	}

	// Another request created the row between our read and write.
	existing, err = e.answers.FindByTopicAndUser(topicID, userID)
	if err != nil {
		return nil, err
	}
	return e.updateAnswer(existing, clean, now)
}

func (e *TopicLifecycle) updateAnswer(answer *models.Answer, content string, now time.Time) (*models.Answer, error) {
	if err := e.answers.UpdateContent(answer.ID, content, now); err != nil {
		return nil, err
	}
	answer.Content = content
	answer.UpdatedAt = &now
	return answer, nil
}
