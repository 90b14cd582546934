package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ogurasousui/codex-grpc-workforce/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-grpc-workforce/internal/core/lifecycle"
	"github.com/ogurasousui/codex-grpc-workforce/internal/platform/config"
	pg "github.com/ogurasousui/codex-grpc-workforce/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-grpc-workforce/internal/platform/logger"
	"github.com/ogurasousui/codex-grpc-workforce/internal/platform/metrics"
	"github.com/ogurasousui/codex-grpc-workforce/internal/platform/server"
	"github.com/rs/zerolog"
)

const serviceName = "workforce"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env は任意。存在しなくても起動を続ける
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	bootstrap := logger.New(logger.Options{ServiceName: serviceName})
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootstrap.Fatal().Err(err).Str("path", cfgPath).Msg("failed to load config")
	}

	log := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	txOpts, err := pg.TransactionOptions(cfg.Database)
	if err != nil {
		return err
	}
	txManager := pg.NewTransactionManager(dbPool, txOpts...)

	registry := metrics.NewRegistry()
	commandMetrics := metrics.NewCommandMetrics(registry)
	rpcMetrics := metrics.NewRPCMetrics(registry)

	svc := lifecycle.NewService(
		postgres.NewRepositories(dbPool),
		nil,
		txManager,
		lifecycle.WithLogger(log),
		lifecycle.WithRecorder(commandMetrics),
		lifecycle.WithLocation(cfg.Scheduling.Location),
		lifecycle.WithDefaultShiftLength(cfg.Scheduling.DefaultShiftLength()),
	)

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Metrics.ListenAddr, registry)
		go func() {
			log.Info().Str("addr", cfg.Metrics.ListenAddr).Msg("metrics endpoint listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics endpoint stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	grpcServer := server.New(cfg.Server.ListenAddr, svc, log, rpcMetrics)
	return grpcServer.Run(ctx)
}
