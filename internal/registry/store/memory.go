// Package store holds the registry state behind its single serialization point.
package store

import (
	"context"
	"sync"
	"time"

	"awardregistry/internal/registry/state"
	dErrors "awardregistry/pkg/domain-errors"
)

// defaultTxTimeout bounds how long a caller may wait for and hold the lock.
const defaultTxTimeout = 5 * time.Second

// InMemory serializes every registry operation through one lock. Mutations
// run under the exclusive lock so no reader observes a partially applied
// operation; reads share the lock.
type InMemory struct {
	mu      sync.RWMutex
	state   *state.State
	timeout time.Duration
}

type Option func(*InMemory)

// WithTimeout overrides the per-transaction deadline applied when the caller
// context has none.
func WithTimeout(d time.Duration) Option {
	return func(s *InMemory) {
		s.timeout = d
	}
}

func NewInMemory(st *state.State, opts ...Option) *InMemory {
	s := &InMemory{state: st, timeout: defaultTxTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs fn with exclusive access to the state. fn must either leave the
// state untouched and return an error, or apply its mutation and return nil.
func (s *InMemory) Execute(ctx context.Context, fn func(st *state.State) error) error {
	ctx, cancel := s.withDeadline(ctx)
	defer cancel()
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkCtx(ctx); err != nil {
		return err
	}
	return fn(s.state)
}

// View runs fn with shared read access. fn must not mutate the state.
func (s *InMemory) View(ctx context.Context, fn func(st *state.State) error) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

func (s *InMemory) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func checkCtx(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return nil
}
