package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hako/api"
	"hako/cmd"
	http_adapter "hako/internal/adapters/in/http"
	postgres_adapter "hako/internal/adapters/out/postgres"
	"hako/internal/pkg/logger"

	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(configs.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, configs, appLogger); err != nil {
		appLogger.Fatal("service stopped with error", zap.Error(err))
	}
	appLogger.Info("service exited")
}

func run(ctx context.Context, configs cmd.Config, appLogger *zap.Logger) error {
	gormDB, err := gorm.Open(postgres.Open(configs.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if sqlDB, dbErr := gormDB.DB(); dbErr == nil {
		defer sqlDB.Close()
	}

	migrator, err := postgres_adapter.NewMigrator(gormDB, appLogger)
	if err != nil {
		return err
	}
	if err = migrator.Run(ctx); err != nil {
		return err
	}

	policy, err := configs.ReservationPolicy()
	if err != nil {
		return err
	}

	sinks, closeSinks, err := cmd.NewStatusSinks(ctx, configs, appLogger)
	if err != nil {
		return fmt.Errorf("connect status sinks: %w", err)
	}
	defer closeSinks()

	app := cmd.NewCompositionRoot(configs, gormDB, policy, sinks, appLogger)

	jobManager, err := app.CreateJobManager()
	if err != nil {
		return err
	}

	doc, err := http_adapter.LoadSpec(ctx, api.Spec)
	if err != nil {
		return err
	}
	validate, err := http_adapter.ValidateRequests(doc)
	if err != nil {
		return err
	}
	router := http_adapter.NewRouter(
		app.CreateServer(),
		http_adapter.NewTokenManager(configs.JWTSecret, configs.TokenTTL),
		validate,
		appLogger,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		jobManager.StartAll()
		<-gctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		jobManager.StopAll(stopCtx)
		return nil
	})

	g.Go(func() error {
		appLogger.Info("starting pickup service",
			zap.String("port", configs.HTTPPort),
			zap.String("environment", configs.Env),
		)
		if startErr := router.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); startErr != nil &&
			!errors.Is(startErr, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", startErr)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("shutting down pickup service")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return router.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
