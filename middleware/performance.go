package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/fxsml/dispatch"
)

// DefaultPerformanceThreshold is the duration above which a request is
// reported as slow.
const DefaultPerformanceThreshold = 200 * time.Millisecond

// PerformanceConfig configures the Performance behavior.
type PerformanceConfig struct {
	// Threshold above which a request is logged. Default: 200ms.
	Threshold time.Duration
	// Logger receives the warnings. Default: slog.Default().
	Logger dispatch.Logger
}

// Performance logs a warning for every request whose pipeline took longer
// than the configured threshold and a debug record for all others. Results and errors pass through unchanged.
func Performance[Req, Res any](cfg PerformanceConfig) dispatch.BehaviorFunc[Req, Res] {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultPerformanceThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return func(ctx context.Context, req Req, next dispatch.NextFunc[Res]) (Res, error) {
		start := time.Now()
		res, err := next()
		elapsed := time.Since(start)
		if elapsed > cfg.Threshold {
			cfg.Logger.Warn("Long running request",
				"request", RequestName(req),
				"duration", elapsed,
				"threshold", cfg.Threshold)
		} else {
			cfg.Logger.Debug("Request handled",
				"request", RequestName(req),
				"duration", elapsed)
		}
		return res, err
	}
}
