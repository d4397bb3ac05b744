// Package lifecycle coordinates graceful shutdown.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
)

// Hook describes a named shutdown hook.
type Hook struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Shutdown coordinates graceful shutdown hooks in parallel.
type Shutdown struct {
	mu    sync.Mutex
	hooks []Hook
	log   *slog.Logger
}

// NewShutdown constructs a new Shutdown coordinator.
func NewShutdown(log *slog.Logger) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{log: log}
}

// Register adds a named shutdown hook.
func (s *Shutdown) Register(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, Hook{Name: name, Fn: fn})
}

// Execute runs all registered hooks concurrently and waits for completion.
// A panicking hook is reported as a failure of that hook.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.Unlock()

	start := time.Now()
	s.log.Info("shutdown sequence started", slog.Int("hook_count", len(hooks)))

	var errMu sync.Mutex
	var errs []error

	var wg conc.WaitGroup
	for _, hook := range hooks {
		h := hook
		wg.Go(func() {
			if err := s.run(ctx, h); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
		})
	}

	if recovered := wg.WaitAndRecover(); recovered != nil {
		errs = append(errs, fmt.Errorf("shutdown hook panicked: %v", recovered.Value))
	}

	s.log.Info("shutdown sequence finished", slog.Duration("elapsed", time.Since(start)))

	return errors.Join(errs...)
}

func (s *Shutdown) run(ctx context.Context, h Hook) error {
	s.log.Info("running shutdown hook", slog.String("hook", h.Name))

	if err := h.Fn(ctx); err != nil {
		s.log.Error("shutdown hook failed", slog.String("hook", h.Name), slog.Any("error", err))
		return fmt.Errorf("%s: %w", h.Name, err)
	}

	s.log.Info("shutdown hook completed", slog.String("hook", h.Name))
	return nil
}
