// Package publisher persists registry audit events and fans them out to
// external sinks.
//
// The store is authoritative: in synchronous mode a store failure is returned
// to the caller. Sink delivery is best effort and each sink sits behind its own
// circuit breaker so a broker outage does not slow down every emission.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "awardregistry/pkg/domain"
	audit "awardregistry/pkg/platform/audit"
	"awardregistry/pkg/platform/circuit"

	"github.com/google/uuid"
)

var (
	ErrBufferFull = errors.New("audit buffer full")
	ErrClosed     = errors.New("audit publisher closed")
)

type sinkEntry struct {
	sink    audit.Sink
	breaker *circuit.Breaker
}

// Publisher captures structured audit events. It is append-only.
type Publisher struct {
	store   audit.Store
	sinks   []sinkEntry
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time

	breakerOpts []circuit.Option

	mu     sync.RWMutex
	closed bool
	buffer chan audit.Event
	wg     sync.WaitGroup
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches Emit to enqueue events on a buffer of the given
// size. A background goroutine persists them; Close drains the buffer.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = make(chan audit.Event, size)
		}
	}
}

func WithSink(sink audit.Sink) Option {
	return func(p *Publisher) {
		p.sinks = append(p.sinks, sinkEntry{sink: sink})
	}
}

// WithSinkBreaker sets the circuit breaker options applied to every sink.
func WithSinkBreaker(opts ...circuit.Option) Option {
	return func(p *Publisher) {
		p.breakerOpts = opts
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := range p.sinks {
		p.sinks[i].breaker = circuit.New("audit_sink_"+p.sinks[i].sink.Name(), p.breakerOpts...)
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit stamps the event with an id, timestamp and category when missing and
// records it.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	if p.buffer == nil {
		return p.persist(ctx, event)
	}

	select {
	case p.buffer <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		if p.metrics != nil {
			p.metrics.IncDropped()
		}
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"event_id", event.ID,
		)
		return ErrBufferFull
	}
}

func (p *Publisher) List(ctx context.Context) ([]audit.Event, error) {
	return p.store.ListAll(ctx)
}

func (p *Publisher) ListByCompany(ctx context.Context, companyID id.CompanyID) ([]audit.Event, error) {
	return p.store.ListByCompany(ctx, companyID)
}

// Close stops accepting events and waits for buffered events to be persisted.
// It is safe to call more than once.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.buffer != nil {
		close(p.buffer)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		if err := p.persist(context.Background(), event); err != nil {
			p.logger.Error("failed to persist buffered audit event",
				"action", event.Action,
				"event_id", event.ID,
				"error", err,
			)
		}
	}
}

func (p *Publisher) persist(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		if p.metrics != nil {
			p.metrics.IncPersistFailures()
		}
		return err
	}
	if p.metrics != nil {
		p.metrics.IncEmitted(event.Category)
	}
	p.fanOut(ctx, event)
	return nil
}

func (p *Publisher) fanOut(ctx context.Context, event audit.Event) {
	for _, entry := range p.sinks {
		name := entry.sink.Name()
		if !entry.breaker.Allow() {
			if p.metrics != nil {
				p.metrics.IncSinkDropped(name)
			}
			continue
		}

		if err := entry.sink.Publish(ctx, event); err != nil {
			open, change := entry.breaker.RecordFailure()
			if p.metrics != nil {
				p.metrics.IncSinkFailures(name)
				p.metrics.SetSinkBreakerState(name, open)
			}
			p.logger.WarnContext(ctx, "audit sink publish failed",
				"sink", name,
				"action", event.Action,
				"event_id", event.ID,
				"circuit_opened", change.Opened,
				"error", err,
			)
			continue
		}

		_, change := entry.breaker.RecordSuccess()
		if change.Closed {
			if p.metrics != nil {
				p.metrics.SetSinkBreakerState(name, false)
			}
			p.logger.InfoContext(ctx, "audit sink recovered", "sink", name)
		}
	}
}
