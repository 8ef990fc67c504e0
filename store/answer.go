package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/luvfam/familing/models"
)

// MemberCount is one family member's answer count over a window.
type MemberCount struct {
	UserID uint
	Count  int
}

// AnswerStore persists answers and serves the participation aggregates.
type AnswerStore interface {
	FindByTopicAndUser(topicID, userID uint) (*models.Answer, error)
	// Create inserts a new answer. A (topic_id, user_id) uniqueness conflict
	// is returned as ErrDuplicate so the caller can retry as an update.
	Create(answer *models.Answer) error
	// UpdateContent mutates an existing answer in place and stamps updated_at.
	UpdateContent(id uint, content string, now time.Time) error
	// CountSince counts a user's answers created at or after from.
	CountSince(userID uint, from time.Time) (int, error)
	// CountSinceGroupedByFamily returns per-member answer counts for a family
	// over the window, ordered by count descending.
	CountSinceGroupedByFamily(familyID uint, from time.Time) ([]MemberCount, error)
	// FindByTopicAndFamily lists a family's answers to one topic, oldest first.
	FindByTopicAndFamily(topicID, familyID uint) ([]models.Answer, error)
	// FindAllByFamily lists a family's answers across topics, newest topic first.
	FindAllByFamily(familyID uint, limit int) ([]models.Answer, error)
}

type gormAnswerStore struct {
	db *gorm.DB
}

// NewAnswerStore returns an AnswerStore backed by gorm.
func NewAnswerStore(db *gorm.DB) AnswerStore {
	return &gormAnswerStore{db: db}
}

func (s *gormAnswerStore) FindByTopicAndUser(topicID, userID uint) (*models.Answer, error) {
	var answer models.Answer
	err := s.db.
		Where("topic_id = ? AND user_id = ?", topicID, userID).
		First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &answer, nil
}

func (s *gormAnswerStore) Create(answer *models.Answer) error {
	if err := s.db.Create(answer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *gormAnswerStore) UpdateContent(id uint, content string, now time.Time) error {
	res := s.db.Model(&models.Answer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":    content,
			"updated_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormAnswerStore) CountSince(userID uint, from time.Time) (int, error) {
	var count int64
	err := s.db.Model(&models.Answer{}).
		Where("user_id = ? AND created_at >= ?", userID, from).
		Count(&count).Error
	return int(count), err
}

func (s *gormAnswerStore) CountSinceGroupedByFamily(familyID uint, from time.Time) ([]MemberCount, error) {
	var counts []MemberCount
	err := s.db.Model(&models.Answer{}).
		Select("user_id, COUNT(*) AS count").
		Where("family_id = ? AND created_at >= ?", familyID, from).
		Group("user_id").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}

func (s *gormAnswerStore) FindByTopicAndFamily(topicID, familyID uint) ([]models.Answer, error) {
	var answers []models.Answer
	err := s.db.Preload("User").
		Where("topic_id = ? AND family_id = ?", topicID, familyID).
		Order("created_at ASC").
		Find(&answers).Error
	return answers, err
}

func (s *gormAnswerStore) FindAllByFamily(familyID uint, limit int) ([]models.Answer, error) {
	var answers []models.Answer
	err := s.db.Preload("User").
		Where("family_id = ?", familyID).
		Order("topic_id DESC, created_at ASC").
		Limit(limit).
		Find(&answers).Error
	return answers, err
}
