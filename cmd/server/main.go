package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shubhip58/Chattify/internal/app"
	"github.com/shubhip58/Chattify/internal/config"
	"github.com/shubhip58/Chattify/internal/log"
)

func main() {
	var (
		configPath string
		addr       string
		dbPath     string
		logLevel   string
	)

	root := &cobra.Command{
		Use:          "chattify-server",
		Short:        "Chattify real-time messaging server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootLogger := log.New(logLevel)

			cfg, cfgPath, err := config.Load(bootLogger, configPath)
			if err != nil {
				return err
			}

			// Flags win over config file and env.
			if addr != "" {
				cfg.Addr = addr
			}
			if dbPath != "" {
				cfg.DatabasePath = dbPath
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			logger := log.New(cfg.LogLevel)
			logger.Info().Str("config", cfgPath).Str("addr", cfg.Addr).Msg("starting chattify server")

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := application.Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	root.Flags().StringVar(&configPath, "config", "", "path to config file")
	root.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	root.Flags().StringVar(&dbPath, "db", "", "path to SQLite database file")
	root.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
