package main

import (
	"os"
	"os/signal"
	"syscall"

	"ecom-auditor/internal/httpapi"
	"ecom-auditor/internal/profit"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calculator as a JSON API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		checks := map[string]httpapi.Pinger{"redis": a.redis}
		if a.store != nil {
			checks["postgres"] = a.store
		}

		calc := profit.NewCalculator(profit.Options{WarningMarginPercent: a.cfg.Calc.WarningMarginPercent})
		handler := httpapi.NewHandler(calc, a.book(), a.advisor, checks, a.logger)
		return httpapi.Serve(ctx, a.cfg.HTTP, httpapi.NewRouter(handler, a.logger), a.logger)
	},
}
