package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nohumanman/descenders-modding/internal/api"
	"github.com/nohumanman/descenders-modding/internal/config"
	"github.com/nohumanman/descenders-modding/internal/factory"
	redisstorage "github.com/nohumanman/descenders-modding/internal/storage/redis"
)

const releaseVersion = "0.4.0"

func main() {
	cfg := &Config{}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cobra.CheckErr(newCmd(cfg).ExecuteContext(ctx))
}

func newLogger(cfg *Config) *slog.Logger {
	lvl, _ := cfg.level()
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
}

// buildApp wires the application from flags and environment secrets
func buildApp(cfg *Config, logger *slog.Logger) (*factory.App, error) {
	secrets, err := config.Load()
	if err != nil {
		return nil, err
	}

	appCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.storage,
		SQLitePath:  cfg.sqlitePath,
		Discord:     secrets.Discord,
		TimeURLBase: cfg.timeURLBase,
	}
	if cfg.storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.redisURL
		appCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(appCfg)
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	return app, nil
}

func serve(ctx context.Context, cfg *Config) error {
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	app, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.bind
	serverConfig.Port = cfg.port
	server := api.NewServer(app.Handler(cfg.secureCookies), serverConfig, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.storage),
		slog.String("version", releaseVersion),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}
