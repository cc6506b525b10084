package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"kakeibo/internal/backend"
	"kakeibo/internal/cli"
	"kakeibo/internal/gemini"
	apphttp "kakeibo/internal/http"
	"kakeibo/internal/log"
	"kakeibo/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()
	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	workbooks, err := backend.NewFactory(ctx, logger, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize ledger backend",
			log.FieldError, err,
			"backend", cfg.DataBackend)
		os.Exit(1)
	}

	oracle, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrency)
	if err != nil {
		logger.Error("Failed to initialize Gemini client", log.FieldError, err)
		os.Exit(1)
	}

	var events services.EventPublisher
	publisher := cli.InitPublisher(logger, cfg)
	if publisher != nil {
		events = publisher
	}

	var presets apphttp.PresetStore
	repo := cli.InitPresets(logger, cfg.SQLiteDBPath)
	if repo != nil {
		presets = repo
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:             services.NewLedgerService(oracle, oracle, oracle, events),
		Workbooks:          workbooks,
		Presets:            presets,
		Logger:             logger,
		APIKey:             cfg.APIKey,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSOrigins:        cfg.CORSAllowedOrigins,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if repo != nil {
			if err := repo.Close(); err != nil {
				logger.Warn("CSV preset store close error", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting kakeibo server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"model", cfg.GeminiModel,
		"presets", repo != nil,
		"events", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
