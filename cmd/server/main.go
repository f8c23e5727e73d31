package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"formalyze/internal/app"
	"formalyze/internal/cache"
	"formalyze/internal/config"
	"formalyze/internal/logger"
	"formalyze/internal/normalizer"
	"formalyze/internal/service"
	"formalyze/internal/transport/rest"
	"formalyze/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		Output:     os.Stdout,
		JSON:       cfg.Log.JSON,
		TimeFormat: "15:04:05",
	})
	log := logger.With("component", "server")

	ctx := context.Background()

	repos, err := app.Open(ctx, cfg.Mongo)
	if err != nil {
		log.Error("failed to open repositories", "error", err)
		os.Exit(1)
	}
	defer repos.Close(context.Background())

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Error("failed to ping Redis", "addr", cfg.Redis.Addr, "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis", "addr", cfg.Redis.Addr)

	wsHub := ws.NewHub()

	// Initialize caches
	conversations := cache.NewConversationCache(rdb)
	results := cache.NewResultsCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(repos.UserRepo, cfg.Auth)
	surveySvc := service.NewSurveyService(repos.SurveyRepo, repos.ResponseRepo, results, normalizer.New(logger.With("component", "normalizer")))
	responseSvc := service.NewResponseService(repos.SurveyRepo, repos.ResponseRepo, results)
	resultsSvc := service.NewResultsService(repos.SurveyRepo, repos.ResponseRepo, results)
	agentSvc := service.NewAgentService(newAgent(cfg, log), conversations, surveySvc)

	// wsHub implements service.Broadcaster
	surveySvc.SetBroadcaster(wsHub)
	responseSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		AuthService:     authSvc,
		SurveyService:   surveySvc,
		ResponseService: responseSvc,
		ResultsService:  resultsSvc,
		AgentService:    agentSvc,
		WSHub:           wsHub,
		CORS:            cfg.CORS,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	wsHub.Close()

	log.Info("server exited")
}

func newAgent(cfg *config.Config, log logger.Logger) service.SurveyAgent {
	if cfg.Agent.IsRemote() {
		log.Info("using remote survey agent", "url", cfg.Agent.APIURL)
		return service.NewRemoteAgent(cfg.Agent)
	}

	llm := service.NewLLMClient(cfg.LLM)
	if llm.IsEnabled() {
		log.Info("using local survey agent", "model", cfg.LLM.Model)
	} else {
		log.Warn("LLM API key not set, local survey agent uses fallback questions")
	}
	return service.NewLocalAgent(llm)
}
