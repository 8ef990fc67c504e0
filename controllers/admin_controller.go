package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luvfam/familing/config"
	"github.com/luvfam/familing/services"
	"github.com/luvfam/familing/store"
	"github.com/luvfam/familing/utils"
)

// AdminController exposes manual topic creation and job triggers for
// operators. The scheduler jobs remain the normal path; these endpoints exist
// for backfills and incident recovery.
type AdminController struct {
	engine     *services.TopicLifecycle
	topics     store.TopicStore
	generation *services.GenerationJob
	activation *services.ActivationJob
	expiry     *services.ExpiryJob
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(engine *services.TopicLifecycle, topics store.TopicStore, generation *services.GenerationJob, activation *services.ActivationJob, expiry *services.ExpiryJob) *AdminController {
	return &AdminController{
		engine:     engine,
		topics:     topics,
		generation: generation,
		activation: activation,
		expiry:     expiry,
	}
}

// AdminOnly gates a route group to configured admin nicknames.
func AdminOnly() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		nickname := getNickname(ctx)
		if nickname == "" || !isAdmin(nickname) {
			utils.Error(ctx, http.StatusForbidden, 40310, "admin access required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func isAdmin(nickname string) bool {
	for _, admin := range config.Get().AdminNicknames {
		if admin == nickname {
			return true
		}
	}
	return false
}

// CreateTopic creates a draft topic from operator supplied text. The text
// passes through the same sanitizer as generated output, so manual drafts
// obey the same length and shape bounds.
func (a *AdminController) CreateTopic(ctx *gin.Context) {
	var req struct {
		Question string `json:"question" binding:"required"`
		Level    int    `json:"level"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	question := services.SanitizeQuestion(req.Question)
	if question == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "question empty after sanitization")
		return
	}
	level := req.Level
	if level < services.LevelLight || level > services.LevelDeep {
		level = services.LevelLight
	}

	topic, err := a.engine.CreateDraft(question, level)
	if err != nil {
		if errors.Is(err, services.ErrInvalidQuestion) {
			utils.Error(ctx, http.StatusBadRequest, 40041, "question empty after sanitization")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to create topic")
		return
	}

	utils.Success(ctx, gin.H{"topic": topic})
}

// ListTopics returns the most recent topics in every state, newest first.
func (a *AdminController) ListTopics(ctx *gin.Context) {
	limit := 50
	if raw := ctx.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	topics, err := a.topics.FindRecent(limit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to list topics")
		return
	}
	utils.Success(ctx, gin.H{"items": topics, "count": len(topics)})
}

// TriggerGeneration runs the daily generation job once, immediately.
func (a *AdminController) TriggerGeneration(ctx *gin.Context) {
	if err := a.generation.Run(ctx.Request.Context(), time.Now()); err != nil {
		utils.Error(ctx, http.StatusBadGateway, 50241, "generation run failed")
		return
	}
	utils.Success(ctx, gin.H{"message": "generation run completed"})
}

// TriggerActivation runs the activation job once, immediately.
func (a *AdminController) TriggerActivation(ctx *gin.Context) {
	if err := a.activation.Run(ctx.Request.Context(), time.Now()); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "activation run failed")
		return
	}
	utils.Success(ctx, gin.H{"message": "activation run completed"})
}

// TriggerExpiry runs the expiry sweep once, immediately.
func (a *AdminController) TriggerExpiry(ctx *gin.Context) {
	if err := a.expiry.Run(ctx.Request.Context(), time.Now()); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "expiry run failed")
		return
	}
	utils.Success(ctx, gin.H{"message": "expiry run completed"})
}
