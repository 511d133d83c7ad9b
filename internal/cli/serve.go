package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fxsml/dispatch/config"
	"github.com/fxsml/dispatch/internal/app"
	"github.com/spf13/cobra"
)

type serveFlags struct {
	addr         string
	store        string
	redisURL     string
	sqlitePath   string
	logLevel     string
	otlpEndpoint string
	eventsTarget string
}

func serveCmd() *cobra.Command {
	var f serveFlags

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the toolbox HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}

			logger, err := app.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(context.Background()); err != nil {
					logger.Warn("Close failed", "error", err)
				}
			}()

			return a.Run(ctx)
		},
	}

	c.Flags().StringVar(&f.addr, "addr", "", "HTTP listen address (default :8080)")
	c.Flags().StringVar(&f.store, "store", "", "Repository: memory, redis or sqlite")
	c.Flags().StringVar(&f.redisURL, "redis-url", "", "Redis URL for the redis store")
	c.Flags().StringVar(&f.sqlitePath, "sqlite-path", "", "Database file for the sqlite store")
	c.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	c.Flags().StringVar(&f.otlpEndpoint, "otlp-endpoint", "", "OTLP/HTTP endpoint enabling tracing")
	c.Flags().StringVar(&f.eventsTarget, "events-target", "", "HTTP endpoint receiving notifications as CloudEvents")
	return c
}

// resolveConfig loads the environment configuration and applies the flags
// set on the command line on top of it.
func resolveConfig(cmd *cobra.Command, f serveFlags) (app.Config, error) {
	cfg, err := app.LoadConfig(config.Loader{})
	if err != nil {
		return app.Config{}, err
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("addr", &cfg.ListenAddr, f.addr)
	override("store", &cfg.Store, f.store)
	override("redis-url", &cfg.RedisURL, f.redisURL)
	override("sqlite-path", &cfg.SQLitePath, f.sqlitePath)
	override("log-level", &cfg.LogLevel, f.logLevel)
	override("otlp-endpoint", &cfg.OTLPEndpoint, f.otlpEndpoint)
	override("events-target", &cfg.EventsTarget, f.eventsTarget)

	return cfg, cfg.Validate()
}
