package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/victornm/tutormate/internal/attempt"
)

// Migrate brings the configured store's schema up to date.
func Migrate(ctx context.Context, c Config) error {
	s := &Server{c: c}
	defer s.close(ctx)

	if err := s.initStorage(ctx); err != nil {
		return fmt.Errorf("server: migrate: %w", err)
	}

	slog.InfoContext(ctx, "server: migrations applied", "driver", c.Storage.Driver)
	return nil
}

// ResetAttempts clears the game attempt ledger and returns the rows removed.
func ResetAttempts(ctx context.Context, c Config) (int64, error) {
	s := &Server{c: c}
	defer s.close(ctx)

	if err := s.initStorage(ctx); err != nil {
		return 0, fmt.Errorf("server: reset attempts: %w", err)
	}

	return attempt.NewService(attempt.Config{
		Store:   s.store.attempt,
		Timeout: c.Storage.Timeout,
	}).Reset(ctx)
}
