package app

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"formalyze/internal/config"
	"formalyze/internal/logger"
	"formalyze/internal/repository"
	"formalyze/internal/repository/memory"
)

// MemoryScheme selects in-process repositories instead of MongoDB
const MemoryScheme = "memory://"

// App bundles the repositories shared by the binaries
type App struct {
	SurveyRepo   repository.SurveyRepo
	ResponseRepo repository.ResponseRepo
	UserRepo     repository.UserRepo

	client *mongo.Client
	log    logger.Logger
}

// Open connects the repositories described by cfg. A URI using the
// memory:// scheme keeps all data in process.
func Open(ctx context.Context, cfg config.MongoConfig) (*App, error) {
	log := logger.With("component", "storage")

	if strings.HasPrefix(cfg.URI, MemoryScheme) {
		log.Warn("using in-memory repositories; data is lost on restart")
		return &App{
			SurveyRepo:   memory.NewSurveyRepo(),
			ResponseRepo: memory.NewResponseRepo(),
			UserRepo:     memory.NewUserRepo(),
			log:          log,
		}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := repository.EnsureIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}
	log.Info("connected to MongoDB", "database", cfg.Database)

	return &App{
		SurveyRepo:   repository.NewSurveyRepo(db),
		ResponseRepo: repository.NewResponseRepo(db),
		UserRepo:     repository.NewUserRepo(db),
		client:       client,
		log:          log,
	}, nil
}

// IsMemory reports whether the repositories live in process
func (a *App) IsMemory() bool {
	return a.client == nil
}

// Close disconnects from MongoDB
func (a *App) Close(ctx context.Context) {
	if a.client == nil {
		return
	}
	if err := a.client.Disconnect(ctx); err != nil {
		a.log.Warn("failed to disconnect from MongoDB", "error", err)
	}
}
