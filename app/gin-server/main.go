package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/jobpilot/jobpilot/config"
	"github.com/jobpilot/jobpilot/internal/api/handlers"
	"github.com/jobpilot/jobpilot/internal/api/middleware"
	"github.com/jobpilot/jobpilot/internal/api/routes"
	"github.com/jobpilot/jobpilot/internal/cache"
	"github.com/jobpilot/jobpilot/internal/logger"
	"github.com/jobpilot/jobpilot/internal/models"
	"github.com/jobpilot/jobpilot/internal/providers/llm"
	"github.com/jobpilot/jobpilot/internal/providers/resume"
	pgrepo "github.com/jobpilot/jobpilot/internal/repositories/postgres"
	"github.com/jobpilot/jobpilot/internal/services"
	"github.com/jobpilot/jobpilot/internal/workers"
)

func main() {
	_ = godotenv.Load()

	l := logger.New()

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	l.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	l.Info("Redis connected")

	if err := config.PostgresDB.AutoMigrate(
		&models.UserProfile{},
		&models.Preferences{},
		&models.UserSkill{},
		&models.JobSource{},
		&models.JobPosting{},
		&models.SavedJob{},
		&models.Resume{},
		&models.ApplicationDraft{},
		&models.Application{},
	); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	ctx := context.Background()

	gemini, err := llm.NewVertexGemini(ctx,
		os.Getenv("VERTEX_PROJECT_ID"),
		os.Getenv("VERTEX_LOCATION"),
		os.Getenv("VERTEX_MODEL"),
	)
	if err != nil {
		log.Fatalf("Vertex init error: %v", err)
	}
	defer gemini.Close()

	jobRepo := pgrepo.NewJobRepo(config.PostgresDB)
	sourceRepo := pgrepo.NewJobSourceRepo(config.PostgresDB)
	savedRepo := pgrepo.NewSavedJobRepo(config.PostgresDB)
	userRepo := pgrepo.NewUserRepo(config.PostgresDB)
	draftRepo := pgrepo.NewDraftRepo(config.PostgresDB)
	appRepo := pgrepo.NewApplicationRepo(config.PostgresDB)
	resumeRepo := pgrepo.NewResumeRepo(config.PostgresDB)

	redisCache := cache.NewRedisCache(config.RedisClient)
	resumeProvider := resume.NewStoreProvider(resumeRepo)

	aiSvc := services.NewAIService(gemini, envDuration("AI_TIMEOUT", 60*time.Second), l)
	userSvc := services.NewUserService(userRepo, resumeRepo, envInt("AI_DAILY_LIMIT", services.DefaultDailyAICallLimit))
	jobSvc := services.NewJobService(jobRepo, savedRepo, userRepo, aiSvc, redisCache)
	appSvc := services.NewApplicationService(draftRepo, appRepo, jobRepo, userRepo, resumeProvider, aiSvc)
	catalogSvc := services.NewCatalogService(jobRepo, sourceRepo)

	sweeper := &workers.Sweeper{
		Catalog:  catalogSvc,
		Drafts:   appSvc,
		Interval: envDuration("SWEEP_INTERVAL", time.Hour),
		Logger:   l,
	}
	if err := sweeper.Start(ctx); err != nil {
		log.Fatalf("sweeper start error: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Jobs:         handlers.NewJobHandler(jobSvc),
		Applications: handlers.NewApplicationHandler(appSvc),
		Profile:      handlers.NewProfileHandler(userSvc),
		Users:        userSvc,
		Cache:        redisCache,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func envInt(key string, def int) int {
	if raw := os.Getenv(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return def
}
