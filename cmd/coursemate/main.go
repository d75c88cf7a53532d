package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/coursemate/coursemate-api/api/swagger"
	"github.com/coursemate/coursemate-api/internal/ai"
	"github.com/coursemate/coursemate-api/internal/bot"
	"github.com/coursemate/coursemate-api/internal/handler"
	"github.com/coursemate/coursemate-api/internal/repository"
	"github.com/coursemate/coursemate-api/internal/router"
	"github.com/coursemate/coursemate-api/internal/service"
	"github.com/coursemate/coursemate-api/pkg/cache"
	"github.com/coursemate/coursemate-api/pkg/config"
	"github.com/coursemate/coursemate-api/pkg/database"
	"github.com/coursemate/coursemate-api/pkg/logger"
	"github.com/coursemate/coursemate-api/pkg/storage"
)

// @title CourseMate API
// @version 0.1.0
// @description Course material distribution and quiz generation for universities
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, taxonomy cache disabled", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	store, err := storage.NewMaterialStore(cfg.Storage.Root)
	if err != nil {
		logr.Sugar().Fatalw("storage init failed", "error", err)
	}

	universityRepo := repository.NewUniversityRepository(db)
	majorRepo := repository.NewMajorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	professorRepo := repository.NewProfessorRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	attemptRepo := repository.NewQuizAttemptRepository(db)
	rateLimitRepo := repository.NewRateLimitRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	validate := validator.New()
	generator := ai.NewOpenAIGenerator(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.MaxRetries, logr)
	metricsSvc := service.NewMetricsService()

	taxonomySvc := service.NewTaxonomyService(universityRepo, majorRepo, courseRepo, professorRepo, materialRepo, attemptRepo, store, cacheRepo, metricsSvc, validate, logr)
	professorSvc := service.NewProfessorService(professorRepo, courseRepo, materialRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, majorRepo, validate, logr)
	materialSvc := service.NewMaterialService(materialRepo, taxonomySvc, courseRepo, store, rateLimitRepo, nil, cfg.RateLimit.UploadsPerDay, validate, logr)
	quizSvc := service.NewQuizService(attemptRepo, materialRepo, courseRepo, store, generator, service.QuizConfig{
		Questions:      cfg.Quiz.Questions,
		MinSourceWords: cfg.Quiz.MinSourceWords,
		PromptBudget:   cfg.Quiz.PromptBudget,
		Timeout:        cfg.AI.Timeout,
	}, logr)
	statsSvc := service.NewStatsService(statsRepo, attemptRepo, logr)

	if cfg.Telegram.Token != "" {
		tgBot, err := bot.New(cfg.Telegram.Token, cfg.Telegram.AdminCode, bot.Services{
			Students:   studentSvc,
			Professors: professorSvc,
			Taxonomy:   taxonomySvc,
			Materials:  materialSvc,
			Quizzes:    quizSvc,
			Stats:      statsSvc,
		}, logr)
		if err != nil {
			logr.Sugar().Fatalw("telegram bot init failed", "error", err)
		}
		notifier := bot.NewUploadNotifier(tgBot, studentRepo, logr)
		notifier.Start(ctx)
		defer notifier.Stop()
		materialSvc.SetNotifier(notifier)

		go tgBot.Start()
		defer tgBot.Stop()
	} else {
		logr.Warn("TELEGRAM_TOKEN not set, running without the bot front-end")
	}

	handlers := router.Handlers{
		Taxonomy:   handler.NewTaxonomyHandler(taxonomySvc),
		Students:   handler.NewStudentHandler(studentSvc),
		Professors: handler.NewProfessorHandler(professorSvc),
		Materials:  handler.NewMaterialHandler(materialSvc, professorSvc, metricsSvc),
		Quizzes:    handler.NewQuizHandler(quizSvc, studentSvc, metricsSvc),
		Stats:      handler.NewStatsHandler(statsSvc),
		Metrics:    handler.NewMetricsHandler(metricsSvc),
	}
	engine := router.New(cfg, logr, handlers, professorSvc, metricsSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
