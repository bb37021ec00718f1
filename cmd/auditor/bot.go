package main

import (
	"os"
	"os/signal"
	"syscall"

	"ecom-auditor/internal/bot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.cfg.ValidateBot(); err != nil {
			return err
		}

		deps := bot.Deps{
			State:   a.redis,
			Book:    a.book(),
			Limiter: a.redis,
			Advisor: a.advisor,
			Config:  a.cfg,
			Logger:  a.logger,
		}
		if a.store != nil {
			deps.Admin = a.store
		}

		tgBot, err := bot.New(a.cfg.Telegram.Token, deps)
		if err != nil {
			a.logger.Error("Failed to create bot", zap.Error(err))
			return err
		}

		if err := tgBot.Start(ctx); err != nil {
			a.logger.Error("Bot stopped with error", zap.Error(err))
			return err
		}
		a.logger.Info("Bot shutdown gracefully")
		return nil
	},
}
