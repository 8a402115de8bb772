package service

import (
	"context"
	"errors"
	"log/slog"

	"awardregistry/internal/award"
	"awardregistry/internal/registry/metrics"
	"awardregistry/internal/registry/state"
	id "awardregistry/pkg/domain"
	audit "awardregistry/pkg/platform/audit"
)

// Store is the registry's single serialization point.
type Store interface {
	Execute(ctx context.Context, fn func(st *state.State) error) error
	View(ctx context.Context, fn func(st *state.State) error) error
}

// Ledger performs outgoing value transfers: refunds, withdrawals and prizes.
type Ledger interface {
	Transfer(ctx context.Context, to id.Address, amount id.Amount) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// EntropySource supplies the award selection seed.
type EntropySource interface {
	Seed(ctx context.Context) (award.Seed, error)
}

type PriceOracle interface {
	GetEthPrice(ctx context.Context) (int64, error)
}

// Service orchestrates the company registry: catalog, membership, fee
// treasury, awards and ownership. Every mutating operation runs under the
// store's exclusive lock as validate, transfer, apply; events are emitted
// only after the operation commits.
type Service struct {
	store          Store
	ledger         Ledger
	entropy        EntropySource
	oracle         PriceOracle
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithEntropy sets the award seed source. Without one, DistributeAward fails
// with CodeUnavailable.
func WithEntropy(source EntropySource) Option {
	return func(s *Service) {
		s.entropy = source
	}
}

// WithPriceOracle enables GetEthPrice.
func WithPriceOracle(oracle PriceOracle) Option {
	return func(s *Service) {
		s.oracle = oracle
	}
}

// New constructs a Service.
func New(store Store, ledger Ledger, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}
	s := &Service{store: store, ledger: ledger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}
