// Package slog provides logging decorators for clipsave services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/clipsave"
)

// Ensure LoggingStrategy implements clipsave.Strategy.
var _ clipsave.Strategy = (*LoggingStrategy)(nil)

// LoggingStrategy wraps a Strategy with logging of every save.
type LoggingStrategy struct {
	next   clipsave.Strategy
	logger *slog.Logger
}

// NewLoggingStrategy creates a new LoggingStrategy.
func NewLoggingStrategy(next clipsave.Strategy, logger *slog.Logger) *LoggingStrategy {
	return &LoggingStrategy{next: next, logger: logger}
}

// Descriptor delegates to the wrapped strategy.
func (s *LoggingStrategy) Descriptor() clipsave.StrategyDescriptor {
	return s.next.Descriptor()
}

// Validate delegates to the wrapped strategy and logs rejected configuration.
func (s *LoggingStrategy) Validate(cfg clipsave.SaveConfig) error {
	err := s.next.Validate(cfg)
	if err != nil {
		s.logger.Warn("invalid save config",
			"name", s.next.Descriptor().Name,
			"err", err,
		)
	}
	return err
}

// Save delegates to the wrapped strategy and logs the outcome.
func (s *LoggingStrategy) Save(ctx context.Context, sc *clipsave.SaveContext) (result *clipsave.SaveResult) {
	var destination string
	if sc != nil {
		destination = sc.DestinationName
	}
	defer func(begin time.Time) {
		attrs := []any{
			"name", s.next.Descriptor().Name,
			"destination", destination,
			"duration", time.Since(begin),
		}
		if result == nil {
			s.logger.Error("save", attrs...)
			return
		}
		if !result.Succeeded {
			attrs = append(attrs, "kind", result.FailureKind, "err", result.FailureReason)
			s.logger.Error("save", attrs...)
			return
		}
		attrs = append(attrs, "path", result.DestinationPath, "assets", result.AssetCount)
		if result.Metrics != nil {
			attrs = append(attrs, "bytes", result.Metrics.ByteSize, "assets_failed", result.Metrics.AssetsFailed)
		}
		s.logger.Info("save", attrs...)
	}(time.Now())
	return s.next.Save(ctx, sc)
}
