package main

import (
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"survey-studio/api/internal/config"
	"survey-studio/api/internal/handle"
	"survey-studio/api/internal/httpserver"
	"survey-studio/api/internal/logging"
	"survey-studio/api/internal/planner"
	"survey-studio/api/internal/store"
)

func main() {
	cfg := config.Load()

	// Prefer platform PORT env var; fallback to cfg.Port; then to 8000
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	} else if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8000"
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.DatabaseURL == "" {
		logger.Fatal("database DSN is empty: set DATABASE_URL or POSTGRES_* env vars")
	}
	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("store", zap.Error(err))
	}
	surveys := store.NewSurveyRepo(db)

	engines := &planner.Engines{
		Planner: planner.NewClient(cfg.PlannerBaseURL, cfg.PlannerAPIKey, logger),
	}

	h := handle.New(engines, surveys, logger)
	mux := httpserver.NewMux(h)

	if err := httpserver.Start(":"+cfg.Port, mux, logger); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}
