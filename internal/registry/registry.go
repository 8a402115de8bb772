// Package registry wires the award registry from configuration.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"awardregistry/internal/award"
	"awardregistry/internal/payment"
	"awardregistry/internal/platform/config"
	"awardregistry/internal/platform/jsonrpc"
	"awardregistry/internal/platform/kafka/producer"
	platformmetrics "awardregistry/internal/platform/metrics"
	"awardregistry/internal/priceoracle"
	"awardregistry/internal/registry/metrics"
	"awardregistry/internal/registry/service"
	"awardregistry/internal/registry/state"
	"awardregistry/internal/registry/store"
	"awardregistry/pkg/platform/audit/publisher"
	auditmemory "awardregistry/pkg/platform/audit/store/memory"
	"awardregistry/pkg/platform/circuit"
)

const kafkaClientID = "awardregistry"

// Registry is a fully wired registry instance and the resources it owns.
type Registry struct {
	Service *service.Service
	Ledger  *payment.InMemoryLedger
	Audit   *publisher.Publisher
	Metrics *prometheus.Registry

	closers []func()
}

// Build constructs every component named by cfg. Optional collaborators (the
// price feed, the Kafka audit sink) are wired only when configured.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	st, err := state.New(cfg.Registry.Owner, cfg.Registry.RegistrationFee)
	if err != nil {
		return nil, fmt.Errorf("init state: %w", err)
	}

	r := &Registry{
		Ledger:  payment.NewInMemoryLedger(),
		Metrics: platformmetrics.NewRegistry(),
	}

	pub, err := r.buildAudit(ctx, cfg.Audit, logger)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.Audit = pub

	entropy, err := buildEntropy(cfg)
	if err != nil {
		r.Close()
		return nil, err
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithAuditPublisher(pub),
		service.WithMetrics(metrics.New(r.Metrics)),
		service.WithEntropy(entropy),
	}
	if cfg.Oracle.URL != "" {
		oracle, err := buildOracle(cfg.Oracle, r.Metrics, logger)
		if err != nil {
			r.Close()
			return nil, err
		}
		opts = append(opts, service.WithPriceOracle(oracle))
	}

	svc, err := service.New(
		store.NewInMemory(st, store.WithTimeout(cfg.Registry.TxTimeout)),
		r.Ledger,
		opts...,
	)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.Service = svc

	logger.InfoContext(ctx, "registry ready",
		"owner", cfg.Registry.Owner,
		"registration_fee", cfg.Registry.RegistrationFee,
		"entropy_source", cfg.Registry.EntropySource,
		"price_feed", cfg.Oracle.URL != "",
		"kafka_audit", len(cfg.Audit.KafkaBrokers) > 0,
	)
	return r, nil
}

// Close flushes pending audit events and releases external clients, in the
// reverse order they were opened.
func (r *Registry) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

func (r *Registry) buildAudit(ctx context.Context, cfg config.Audit, logger *slog.Logger) (*publisher.Publisher, error) {
	opts := []publisher.Option{
		publisher.WithLogger(logger),
		publisher.WithMetrics(publisher.NewMetrics(r.Metrics)),
		publisher.WithAsyncBuffer(cfg.BufferSize),
	}

	if len(cfg.KafkaBrokers) > 0 {
		sink, err := producer.New(producer.Config{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			ClientID: kafkaClientID,
		})
		if err != nil {
			return nil, fmt.Errorf("init kafka audit sink: %w", err)
		}
		r.closers = append(r.closers, sink.Close)
		if err := sink.EnsureTopic(ctx, 1, 1); err != nil {
			return nil, fmt.Errorf("ensure audit topic %q: %w", cfg.KafkaTopic, err)
		}
		opts = append(opts,
			publisher.WithSink(sink),
			publisher.WithSinkBreaker(circuit.WithCooldown(30*time.Second)),
		)
	}

	pub := publisher.NewPublisher(auditmemory.NewInMemoryStore(), opts...)
	r.closers = append(r.closers, pub.Close)
	return pub, nil
}

func buildEntropy(cfg config.Config) (service.EntropySource, error) {
	switch cfg.Registry.EntropySource {
	case config.EntropyClock:
		return award.NewClockSource(time.Now), nil
	case config.EntropyChain:
		rpc := jsonrpc.New(jsonrpc.Config{
			URL:      cfg.Chain.RPCURL,
			User:     cfg.Chain.RPCUser,
			Password: cfg.Chain.RPCPassword,
			Timeout:  cfg.Chain.Timeout,
		})
		return award.NewChainSource(rpc, time.Now), nil
	default:
		return nil, errors.New("unknown entropy source " + cfg.Registry.EntropySource)
	}
}

func buildOracle(cfg config.Oracle, reg prometheus.Registerer, logger *slog.Logger) (*priceoracle.Client, error) {
	m := priceoracle.NewMetrics(reg)
	breaker := circuit.New("price_feed",
		circuit.WithFailureThreshold(cfg.BreakerThreshold),
		circuit.WithCooldown(cfg.BreakerCooldown),
	)
	feed := priceoracle.NewHTTPFeed(cfg.URL, cfg.Timeout,
		priceoracle.WithBreaker(breaker),
		priceoracle.WithFeedMetrics(m),
	)
	return priceoracle.NewClient(feed,
		priceoracle.WithMaxAge(cfg.MaxAge),
		priceoracle.WithFetchTimeout(cfg.Timeout),
		priceoracle.WithLogger(logger),
		priceoracle.WithMetrics(m),
	)
}
