package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luvfam/familing/services"
	"github.com/luvfam/familing/store"
	"github.com/luvfam/familing/utils"
)

const activeTopicCacheKey = "cache:topic:active"

// TopicController serves the daily topic and answer endpoints.
type TopicController struct {
	engine  *services.TopicLifecycle
	answers store.AnswerStore
}

// NewTopicController creates a new TopicController instance.
func NewTopicController(engine *services.TopicLifecycle, answers store.AnswerStore) *TopicController {
	return &TopicController{engine: engine, answers: answers}
}

// GetCurrentTopic returns the topic whose activation window covers now.
func (t *TopicController) GetCurrentTopic(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(activeTopicCacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	topic, err := t.engine.CurrentActive(time.Now())
	if err != nil {
		if errors.Is(err, services.ErrNoActiveTopic) {
			utils.Error(ctx, http.StatusNotFound, 40420, "no active topic")
			return
		}
		utils.Respond(ctx, http.StatusInternalServerError, 50020, "failed to load topic", nil)
		return
	}

	payload := gin.H{"topic": topic}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	if ttl := activeCacheTTL(topic.ActiveUntil, time.Now()); ttl > 0 {
		utils.CacheSetJSON(activeTopicCacheKey, wrapper, ttl)
	}
	utils.Success(ctx, payload)
}

// activeCacheTTL bounds the cache entry lifetime by the topic's own window so
// an expired topic is never served as current from cache.
func activeCacheTTL(until *time.Time, now time.Time) time.Duration {
	const maxTTL = 10 * time.Minute
	if until == nil {
		return maxTTL
	}
	if remaining := until.Sub(now); remaining < maxTTL {
		return remaining
	}
	return maxTTL
}

// SubmitAnswer creates or overwrites the caller's answer to a topic.
func (t *TopicController) SubmitAnswer(ctx *gin.Context) {
	userID, familyID, ok := getIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	topicID, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid topic id")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}

	// Answers are accepted only for the topic currently in its window.
	current, err := t.engine.CurrentActive(time.Now())
	if err != nil {
		if errors.Is(err, services.ErrNoActiveTopic) {
			utils.Error(ctx, http.StatusNotFound, 40420, "no active topic")
			return
		}
		utils.Respond(ctx, http.StatusInternalServerError, 50021, "failed to load topic", nil)
		return
	}
	if current.ID != topicID {
		utils.Error(ctx, http.StatusConflict, 40910, "topic is not answerable")
		return
	}

	answer, err := t.engine.UpsertAnswer(topicID, userID, familyID, req.Content, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyAnswer):
			utils.Error(ctx, http.StatusBadRequest, 40022, "answer cannot be empty")
		case errors.Is(err, services.ErrAnswerTooLong):
			utils.Error(ctx, http.StatusBadRequest, 40023, "answer too long")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to save answer")
		}
		return
	}

	utils.Success(ctx, gin.H{"answer": answer})
}

// ListTopicAnswers returns the caller's family answers to a topic.
func (t *TopicController) ListTopicAnswers(ctx *gin.Context) {
	_, familyID, ok := getIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	topicID, err := parseID(ctx.Param("id"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid topic id")
		return
	}

	answers, err := t.answers.FindByTopicAndFamily(topicID, familyID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to list answers")
		return
	}

	utils.Success(ctx, gin.H{"items": answers, "count": len(answers)})
}

// ListActiveTopicAnswers returns the family's answers to the current topic.
func (t *TopicController) ListActiveTopicAnswers(ctx *gin.Context) {
	_, familyID, ok := getIdentity(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	topic, err := t.engine.CurrentActive(time.Now())
	if err != nil {
		if errors.Is(err, services.ErrNoActiveTopic) {
			utils.Error(ctx, http.StatusNotFound, 40420, "no active topic")
			return
		}
		utils.Respond(ctx, http.StatusInternalServerError, 50024, "failed to load topic", nil)
		return
	}

	answers, err := t.answers.FindByTopicAndFamily(topic.ID, familyID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to list answers")
		return
	}

	utils.Success(ctx, gin.H{"topic": topic, "items": answers, "count": len(answers)})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
