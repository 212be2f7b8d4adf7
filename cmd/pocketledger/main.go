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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"pocketledger/internal/amqp"
	"pocketledger/internal/assistant"
	"pocketledger/internal/auth"
	"pocketledger/internal/backend"
	"pocketledger/internal/cache"
	"pocketledger/internal/config"
	apphttp "pocketledger/internal/http"
	"pocketledger/internal/log"
	"pocketledger/internal/services"
	"pocketledger/internal/social"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// run returns errors instead of exiting; main owns the exit code.
func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid backend configuration: %w", err)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("initialize %s backend: %w", backendCfg.Type, err)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}()
	}

	ledgerOpts := []services.Option{services.WithLogger(logger)}
	var payments apphttp.PaymentPublisher

	// Event publishing is optional; without a broker the export worker is idle
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger events disabled", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			ledgerOpts = append(ledgerOpts, services.WithPublisher(amqpClient))
			payments = amqpClient
			logger.Info("Ledger events enabled", "exchange", cfg.AMQPExchange)
		}
	}
	ledger := services.NewLedgerService(result.Backend, ledgerOpts...)

	profiles, profileCache := social.New(social.Config{
		APIKey:  cfg.NeynarAPIKey,
		BaseURL: cfg.NeynarBaseURL,
	}, logger)

	model := assistant.New(assistant.Config{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	}, logger)

	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET not set, sessions will not survive a restart")
	}
	issuer, err := auth.NewIssuer(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("initialize session issuer: %w", err)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:    ledger,
		Social:    profiles,
		Assistant: model,
		Issuer:    issuer,
		Payments:  payments,
		Backend:   result.Type,
		Logger:    logger,
	})

	g, gctx := errgroup.WithContext(ctx)

	if profileCache != nil {
		janitor := cache.NewJanitor(logger, profileCache)
		g.Go(func() error {
			janitor.Run(gctx, time.Minute)
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting pocketledger server",
			"port", cfg.Port,
			log.FieldBackend, result.Type,
			"assistant", model.Available())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve on port %s: %w", cfg.Port, err)
	}
	return nil
}
