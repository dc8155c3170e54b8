package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/config"
	handler "github.com/Harsh-BH/codepractice/internal/delivery/http"
	"github.com/Harsh-BH/codepractice/internal/harness"
	"github.com/Harsh-BH/codepractice/internal/judge"
	"github.com/Harsh-BH/codepractice/internal/language"
	"github.com/Harsh-BH/codepractice/internal/progress"
	"github.com/Harsh-BH/codepractice/internal/publisher"
	"github.com/Harsh-BH/codepractice/internal/quota"
	"github.com/Harsh-BH/codepractice/internal/repository"
	"github.com/Harsh-BH/codepractice/internal/repository/memory"
	"github.com/Harsh-BH/codepractice/internal/repository/postgres"
	redisrepo "github.com/Harsh-BH/codepractice/internal/repository/redis"
	"github.com/Harsh-BH/codepractice/internal/security"
	"github.com/Harsh-BH/codepractice/internal/usecase"
)

const quotaJanitorInterval = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting code practice API server")

	if cfg.Auth.Secret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}

	gin.SetMode(cfg.Server.GinMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to PostgreSQL
	dbPool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping PostgreSQL", zap.Error(err))
	}
	logger.Info("Connected to PostgreSQL")

	// Connect to Redis
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to ping Redis", zap.Error(err))
	}
	logger.Info("Connected to Redis")

	// Initialize RabbitMQ publisher
	pub, err := publisher.NewRabbitMQPublisher(cfg.RabbitMQ.URL, logger)
	if err != nil {
		logger.Fatal("Failed to initialize RabbitMQ publisher", zap.Error(err))
	}
	defer pub.Close()
	logger.Info("Connected to RabbitMQ")

	// Repositories
	submissions := postgres.NewPostgresSubmissionRepository(dbPool)
	problems := postgres.NewPostgresProblemRepository(dbPool)
	progressStore := postgres.NewPostgresProgressStore(dbPool)

	// Quota
	var quotaStore repository.QuotaStore
	var memStore *memory.QuotaStore
	switch cfg.Quota.Backend {
	case "memory":
		memStore = memory.NewQuotaStore()
		quotaStore = memStore
		logger.Warn("Using in-process quota store; limits are per instance")
	default:
		quotaStore = redisrepo.NewRedisQuotaStore(rdb)
	}
	tracker := quota.NewTracker(quotaStore, quota.Policy{
		DailyLimit: cfg.Quota.DailyLimit,
		Cooldown:   cfg.Quota.Cooldown,
	})
	if memStore != nil {
		go memStore.RunJanitor(ctx, quotaJanitorInterval, func() string {
			return tracker.Day(time.Now())
		})
	}

	// Executor
	var executor judge.Executor
	switch cfg.Judge.ExecutorMode {
	case "fake":
		executor = judge.NewFake()
		logger.Warn("Using fake executor; code is not actually run")
	default:
		executor = judge.NewClient(judge.Config{
			BaseURL:           cfg.Judge.BaseURL,
			APIKey:            cfg.Judge.APIKey,
			APIHost:           cfg.Judge.APIHost,
			HTTPTimeout:       cfg.Judge.HTTPTimeout,
			PollInterval:      cfg.Judge.PollInterval,
			MaxPollAttempts:   cfg.Judge.MaxPollAttempts,
			WallTimeSlack:     cfg.Judge.WallTimeSlack,
			MaxProcesses:      cfg.Judge.MaxProcesses,
			MaxFileSizeKB:     cfg.Judge.MaxFileSizeKB,
			RequestsPerSecond: cfg.Judge.RequestsPerSecond,
			Burst:             cfg.Judge.Burst,
		}, logger)
	}

	// Use cases
	registry := language.Default()
	gate := usecase.NewGate(security.NewFilter(cfg.Code.MaxSourceBytes), registry, tracker, logger)
	ledger := progress.NewLedger(progressStore, time.Local, logger)
	testHarness := harness.New(executor, cfg.Code.HarnessConcurrency, logger).
		WithBudget(cfg.EvaluationBudget())

	resultUC := usecase.NewGetResultUsecase(gate, executor, submissions, logger)
	codeHandler := handler.NewCodeHandler(
		usecase.NewSubmitCodeUsecase(gate, executor, submissions, logger),
		resultUC,
		usecase.NewExecuteCodeUsecase(gate, executor, submissions, logger),
		usecase.NewSubmitWithTestsUsecase(gate, problems, submissions, testHarness, ledger, pub, logger),
		usecase.NewCodeStatsUsecase(tracker, logger),
		logger,
	)
	submissionHandler := handler.NewSubmissionHandler(
		usecase.NewGetSubmissionUsecase(submissions, logger),
		usecase.NewGetProgressUsecase(ledger),
		logger,
	)
	healthHandler := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"postgres": dbPool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		"rabbitmq": func(context.Context) error {
			if !pub.Healthy() {
				return errors.New("connection closed")
			}
			return nil
		},
	}, logger)

	router := handler.NewRouter(ctx, handler.RouterConfig{
		Code:         codeHandler,
		Submissions:  submissionHandler,
		Stream:       handler.NewWebSocketHandler(resultUC, cfg.Judge.PollInterval, logger),
		Health:       healthHandler,
		Registry:     registry,
		JWTSecret:    []byte(cfg.Auth.Secret),
		JWTIssuer:    cfg.Auth.Issuer,
		RateLimit:    cfg.Server.RateLimit,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       logger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("API server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	cancel()

	logger.Info("API server stopped")
}
