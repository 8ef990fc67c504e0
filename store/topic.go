package store

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/luvfam/familing/models"
)

// TopicStore persists topics and serves the lifecycle queries the engine runs.
type TopicStore interface {
	Save(topic *models.Topic) error
	FindByID(id uint) (*models.Topic, error)
	// FindOldestDraft returns the draft with the lowest id, or ErrNotFound.
	FindOldestDraft() (*models.Topic, error)
	// FindCurrentActive returns the unique active topic whose window covers now.
	// Returns ErrNotFound when none, ErrMultipleActive when the invariant is broken.
	FindCurrentActive(now time.Time) (*models.Topic, error)
	// Activate conditionally promotes a draft: the status check is part of the
	// UPDATE predicate and active rows are locked first, so two concurrent
	// callers cannot both succeed. Reports whether the row was promoted.
	Activate(id uint, from, until time.Time) (bool, error)
	// BulkExpire transitions every active topic with active_until <= now to
	// expired in a single predicate UPDATE and returns the affected row count.
	BulkExpire(now time.Time) (int64, error)
	// FindRecent returns the n most recently created topics, newest first.
	FindRecent(n int) ([]models.Topic, error)
}

type gormTopicStore struct {
	db *gorm.DB
}

// NewTopicStore returns a TopicStore backed by gorm.
func NewTopicStore(db *gorm.DB) TopicStore {
	return &gormTopicStore{db: db}
}

func (s *gormTopicStore) Save(topic *models.Topic) error {
	return s.db.Save(topic).Error
}

func (s *gormTopicStore) FindByID(id uint) (*models.Topic, error) {
	var topic models.Topic
	if err := s.db.First(&topic, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &topic, nil
}

func (s *gormTopicStore) FindOldestDraft() (*models.Topic, error) {
	var topic models.Topic
	err := s.db.
		Where("status = ?", models.TopicStatusDraft).
		Order("id ASC").
		First(&topic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &topic, nil
}

func (s *gormTopicStore) FindCurrentActive(now time.Time) (*models.Topic, error) {
	var topics []models.Topic
	err := s.db.
		Where("status = ? AND active_from <= ? AND active_until > ?", models.TopicStatusActive, now, now).
		Limit(2).
		Find(&topics).Error
	if err != nil {
		return nil, err
	}
	switch len(topics) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &topics[0], nil
	default:
		return nil, ErrMultipleActive
	}
}

func (s *gormTopicStore) Activate(id uint, from, until time.Time) (bool, error) {
	activated := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Lock active rows so a concurrent activation or expiry settles first,
		// then re-check the single-active invariant at the moment of the write.
		var active []models.Topic
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ?", models.TopicStatusActive).
			Find(&active).Error; err != nil {
			return err
		}
		for i := range active {
			if active[i].ActiveUntil != nil && active[i].ActiveUntil.After(from) {
				return nil // still active, promotion is a no-op
			}
		}

		res := tx.Model(&models.Topic{}).
			Where("id = ? AND status = ?", id, models.TopicStatusDraft).
			Updates(map[string]interface{}{
				"status":       models.TopicStatusActive,
				"active_from":  from,
				"active_until": until,
			})
		if res.Error != nil {
			return res.Error
		}
		activated = res.RowsAffected == 1
		return nil
	})
	return activated, err
}

func (s *gormTopicStore) BulkExpire(now time.Time) (int64, error) {
	res := s.db.Model(&models.Topic{}).
		Where("status = ? AND active_until <= ?", models.TopicStatusActive, now).
		Update("status", models.TopicStatusExpired)
	return res.RowsAffected, res.Error
}

func (s *gormTopicStore) FindRecent(n int) ([]models.Topic, error) {
	var topics []models.Topic
	err := s.db.Order("id DESC").Limit(n).Find(&topics).Error
	return topics, err
}
