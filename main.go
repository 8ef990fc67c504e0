package main

import (
	"context"
	"time"

	"github.com/luvfam/familing/config"
	"github.com/luvfam/familing/models"
	"github.com/luvfam/familing/routes"
	"github.com/luvfam/familing/services"
	"github.com/luvfam/familing/store"
	"github.com/luvfam/familing/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Family{}, &models.User{}, &models.Topic{}, &models.Answer{})

	topics := store.NewTopicStore(db)
	answers := store.NewAnswerStore(db)
	engine := services.NewTopicLifecycle(topics, answers, cfg.TopicActiveDays, utils.Sugar)
	ranker := services.NewRanker(answers)

	generator := services.NewGenerator(cfg)
	dropTopicCache := func() { utils.InvalidateByPrefix("cache:topic:") }
	generation := services.NewGenerationJob(generator, engine, cfg.LevelWeights, utils.Sugar)
	activation := services.NewActivationJob(engine, utils.Sugar, dropTopicCache)
	expiry := services.NewExpiryJob(engine, utils.Sugar, dropTopicCache)

	// Each job keeps its own timer; they coordinate only through topic rows,
	// so a slow generation call never delays activation or expiry.
	jobCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	generation.Start(jobCtx, cfg.GenerateHour)
	activation.Start(jobCtx, cfg.ActivateHour)
	expiry.Start(jobCtx, time.Duration(cfg.ExpirySweepMinutes)*time.Minute)

	r := routes.SetupRouter(routes.Deps{
		DB:         db,
		Engine:     engine,
		Ranker:     ranker,
		Topics:     topics,
		Answers:    answers,
		Generation: generation,
		Activation: activation,
		Expiry:     expiry,
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
