package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/luvfam/familing/config"
	"github.com/luvfam/familing/controllers"
	"github.com/luvfam/familing/middleware"
	"github.com/luvfam/familing/services"
	"github.com/luvfam/familing/store"
	"github.com/luvfam/familing/utils"
)

// Deps bundles the shared components the router wires into controllers.
type Deps struct {
	DB         *gorm.DB
	Engine     *services.TopicLifecycle
	Ranker     *services.Ranker
	Topics     store.TopicStore
	Answers    store.AnswerStore
	Generation *services.GenerationJob
	Activation *services.ActivationJob
	Expiry     *services.ExpiryJob
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}
	r.Use(middleware.RequestID())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	topicController := controllers.NewTopicController(deps.Engine, deps.Answers)
	familyController := controllers.NewFamilyController(deps.DB, deps.Ranker, deps.Answers)
	adminController := controllers.NewAdminController(deps.Engine, deps.Topics, deps.Generation, deps.Activation, deps.Expiry)

	api := r.Group("/api/v1")

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/topics/current", topicController.GetCurrentTopic)
	protected.POST("/topics/:id/answers", topicController.SubmitAnswer)
	protected.GET("/topics/:id/answers", topicController.ListTopicAnswers)
	protected.GET("/family/answers", topicController.ListActiveTopicAnswers)
	protected.GET("/family/history", familyController.GetHistory)
	protected.GET("/family/closeness", familyController.GetCloseness)
	protected.GET("/family/stats", familyController.GetStats)

	admin := protected.Group("/admin")
	admin.Use(controllers.AdminOnly())
	admin.GET("/topics", adminController.ListTopics)
	admin.POST("/topics", adminController.CreateTopic)
	admin.POST("/jobs/generate", adminController.TriggerGeneration)
	admin.POST("/jobs/activate", adminController.TriggerActivation)
	admin.POST("/jobs/expire", adminController.TriggerExpiry)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
