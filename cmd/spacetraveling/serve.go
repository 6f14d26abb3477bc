package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/pejamp/spacetraveling"
	"github.com/pejamp/spacetraveling/telemetry"
)

var (
	serveAddr   string
	serveStatic string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, err := spacetraveling.ConfigFromEnv()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}

		var tcfg telemetry.Config
		if err := env.Parse(&tcfg); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
		shutdown, err := telemetry.Setup(ctx, "spacetraveling", version, tcfg)
		if err != nil {
			return err
		}
		defer shutdown(context.Background())

		app := spacetraveling.New(cfg, spacetraveling.WithStaticDir(serveStatic))
		defer app.Close()
		app.Echo.Logger.SetLevel(log.INFO)
		return app.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides ADDR)")
	serveCmd.Flags().StringVar(&serveStatic, "static", "public", "directory of user static assets")
}
