package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/luvfam/familing/models"
	"github.com/luvfam/familing/services"
	"github.com/luvfam/familing/store"
	"github.com/luvfam/familing/utils"
)

const familyHistoryLimit = 200

// FamilyController serves family scoped reads: answer history, closeness
// ranking, and participation stats.
type FamilyController struct {
	db      *gorm.DB
	ranker  *services.Ranker
	answers store.AnswerStore
}

// NewFamilyController creates a new FamilyController instance.
func NewFamilyController(db *gorm.DB, ranker *services.Ranker, answers store.AnswerStore) *FamilyController {
	return &FamilyController{db: db, ranker: ranker, answers: answers}
}

// GetCloseness returns the caller's 30-day participation ranking.
func (f *FamilyController) GetCloseness(ctx *gin.Context) {
	userID, familyID, ok := getIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	result, err := f.ranker.Closeness(userID, familyID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoParticipation):
			utils.Error(ctx, http.StatusNotFound, 40430, "no answers in the last 30 days")
		case errors.Is(err, services.ErrNoFamilyActivity):
			utils.Error(ctx, http.StatusNotFound, 40431, "family has no recent activity")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to compute closeness")
		}
		return
	}

	utils.Success(ctx, gin.H{"closeness": result})
}

// topicHistoryEntry groups one topic with the family's answers to it.
type topicHistoryEntry struct {
	Topic   models.Topic    `json:"topic"`
	Answers []models.Answer `json:"answers"`
}

// GetHistory returns the family's answers grouped by topic, newest topic first.
func (f *FamilyController) GetHistory(ctx *gin.Context) {
	_, familyID, ok := getIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	answers, err := f.answers.FindAllByFamily(familyID, familyHistoryLimit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load history")
		return
	}
	if len(answers) == 0 {
		utils.Success(ctx, gin.H{"items": []topicHistoryEntry{}})
		return
	}

	topicIDs := make([]uint, 0, len(answers))
	seen := make(map[uint]bool)
	for _, a := range answers {
		if !seen[a.TopicID] {
			seen[a.TopicID] = true
			topicIDs = append(topicIDs, a.TopicID)
		}
	}

	var topics []models.Topic
	if err := f.db.Find(&topics, topicIDs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load topics")
		return
	}
	topicByID := make(map[uint]models.Topic, len(topics))
	for _, t := range topics {
		topicByID[t.ID] = t
	}

	entries := make([]topicHistoryEntry, 0, len(topicIDs))
	for _, id := range topicIDs {
		topic, found := topicByID[id]
		if !found {
			continue
		}
		entry := topicHistoryEntry{Topic: topic}
		for _, a := range answers {
			if a.TopicID == id {
				entry.Answers = append(entry.Answers, a)
			}
		}
		entries = append(entries, entry)
	}

	utils.Success(ctx, gin.H{"items": entries})
}

// GetStats returns per-family aggregate counts plus the caller's own
// 30-day answer count.
func (f *FamilyController) GetStats(ctx *gin.Context) {
	userID, familyID, ok := getIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var memberCount int64
	if err := f.db.Model(&models.User{}).Where("family_id = ?", familyID).Count(&memberCount).Error; err != nil {
		memberCount = 0
	}

	var answerCount int64
	if err := f.db.Model(&models.Answer{}).Where("family_id = ?", familyID).Count(&answerCount).Error; err != nil {
		answerCount = 0
	}

	var answeredTopics int64
	if err := f.db.Model(&models.Answer{}).
		Where("family_id = ?", familyID).
		Distinct("topic_id").
		Count(&answeredTopics).Error; err != nil {
		answeredTopics = 0
	}

	myRecent, err := f.answers.CountSince(userID, time.Now().Add(-30*24*time.Hour))
	if err != nil {
		myRecent = 0
	}

	utils.Success(ctx, gin.H{
		"member_count":      memberCount,
		"answer_count":      answerCount,
		"answered_topics":   answeredTopics,
		"my_recent_answers": myRecent,
	})
}
