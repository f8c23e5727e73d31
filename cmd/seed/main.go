package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"formalyze/internal/app"
	"formalyze/internal/config"
	"formalyze/internal/logger"
	"formalyze/internal/model"
	"formalyze/internal/service"
)

func main() {
	email := flag.String("email", "demo@formalyze.dev", "demo account email")
	password := flag.String("password", "demo-password", "demo account password")
	flag.Parse()

	log := logger.With("component", "seed")

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repos, err := app.Open(ctx, cfg.Mongo)
	if err != nil {
		log.Error("failed to open repositories", "error", err)
		os.Exit(1)
	}
	defer repos.Close(context.Background())
	if repos.IsMemory() {
		log.Warn("seeding in-memory repositories has no lasting effect")
	}

	authSvc := service.NewAuthService(repos.UserRepo, cfg.Auth)
	account, err := authSvc.Register(ctx, *email, *password)
	if errors.Is(err, service.ErrEmailTaken) {
		account, err = authSvc.Login(ctx, *email, *password)
	}
	if err != nil {
		log.Error("failed to prepare demo account", "email", *email, "error", err)
		os.Exit(1)
	}

	surveySvc := service.NewSurveyService(repos.SurveyRepo, repos.ResponseRepo, nil, nil)

	// no drafts: the survey is built from the default fallback questions
	survey, err := surveySvc.CreateFromDrafts(ctx, account.UserID,
		"Getting to know you",
		"A demo survey built from the default question set.",
		[]model.QuestionDraft{},
	)
	if err != nil {
		log.Error("failed to insert demo survey", "error", err)
		os.Exit(1)
	}

	log.Info("seeded demo survey",
		"surveyId", survey.ID,
		"questions", len(survey.Questions),
		"owner", *email,
		"publicPath", "/v1/public/surveys/"+survey.ID,
	)
}
