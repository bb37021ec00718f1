package main

import (
	"context"
	"fmt"
	"net/http"

	"ecom-auditor/internal/advisor"
	"ecom-auditor/internal/config"
	"ecom-auditor/internal/feebook"
	"ecom-auditor/internal/storage"
	"ecom-auditor/pkg/gemini"
	"ecom-auditor/pkg/logger"
	"ecom-auditor/pkg/redis"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "auditor",
	Short: "Profitability calculator for Shopee and TikTok Shop sellers",
	Long: `auditor computes net profit, margin, ROI and break-even price of a product
sold on Shopee or TikTok Shop, compares both marketplaces and asks Gemini for advice.

It runs as a Telegram bot, as a JSON API, or as a one-shot terminal calculator.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(botCmd, serveCmd, calcCmd, migrateCmd)
}

// app holds the infrastructure shared by the long-running commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	redis   *redis.Client
	store   *storage.PostgresStorage
	advisor *advisor.Advisor
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// newApp connects Redis and, when configured, PostgreSQL. Migrations run on
// startup.
func newApp(ctx context.Context) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: log}
	if a.advisor, err = newAdvisor(ctx, cfg, log); err != nil {
		_ = log.Sync()
		return nil, err
	}

	a.redis = redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	if err := a.redis.Ping(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if cfg.Database.Enabled() {
		a.store, err = storage.NewPostgresStorage(ctx, cfg.Database, a.redis, log)
		if err != nil {
			a.close()
			return nil, err
		}
		if err := storage.RunMigrations(ctx, a.store.DB(), log); err != nil {
			a.close()
			return nil, err
		}
	} else {
		log.Info("DB_HOST not set, using built-in fee schedules")
	}
	return a, nil
}

// book is the fee book in force: stored overrides when a database is
// configured, the defaults otherwise.
func (a *app) book() feebook.Book {
	if a.store != nil {
		return a.store
	}
	return feebook.Static{}
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Failed to close PostgreSQL", zap.Error(err))
		}
	}
	if a.redis != nil {
		a.redis.Close()
	}
	_ = a.logger.Sync()
}

// newAdvisor returns nil without an API key.
func newAdvisor(ctx context.Context, cfg *config.Config, log *zap.Logger) (*advisor.Advisor, error) {
	if cfg.Gemini.APIKey == "" {
		log.Info("GEMINI_API_KEY not set, AI advice disabled")
		return nil, nil
	}
	opts := []gemini.Option{gemini.WithHTTPClient(&http.Client{Timeout: cfg.Gemini.RequestTimeout})}
	if cfg.Gemini.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.Gemini.BaseURL))
	}
	client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log, opts...)
	if err != nil {
		return nil, err
	}
	return advisor.New(client, log), nil
}
