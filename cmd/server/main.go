package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rebelchris/recallect/internal/config"
	"github.com/rebelchris/recallect/internal/core"
	"github.com/rebelchris/recallect/internal/driver"
	"github.com/rebelchris/recallect/internal/llm"
	"github.com/rebelchris/recallect/internal/observability"
	"github.com/rebelchris/recallect/internal/server"
)

func main() {
	envErr := godotenv.Load()

	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Info("No .env file found, using environment and defaults")
	}

	cfg, err := loadConfig(logger)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Memgraph", zap.Error(err))
	}
	defer d.Close(ctx)

	metrics := observability.NewCollector(observability.Namespace)

	client, err := llm.NewClient(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	var classifier llm.JSONClient
	if client != nil {
		timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
		classifier = llm.NewJSONClassifier(client, timeout, logger, metrics)
	}

	engine := core.NewEngine(d, classifier, cfg, logger, metrics)
	if err := engine.BuildIndices(ctx); err != nil {
		logger.Warn("Failed to build indices", zap.Error(err))
	}

	if os.Getenv("RECALLECT_ENV") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.NewServer(engine, cfg, logger, metrics)
	r := srv.SetupRouter()

	logger.Info("Starting server",
		zap.String("port", cfg.Server.Port),
		zap.String("llm_provider", cfg.LLM.Provider))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("RECALLECT_ENV") == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadConfig reads CONFIG_PATH (default config.toml). A missing file is not an
// error; the defaults plus environment overrides are used instead.
func loadConfig(logger *zap.Logger) (*config.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.toml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		logger.Info("Config file not found, using defaults", zap.String("path", path))
		cfg = config.Default()
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
