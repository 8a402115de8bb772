package priceoracle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dErrors "awardregistry/pkg/domain-errors"
	"awardregistry/pkg/platform/sentinel"

	"golang.org/x/sync/singleflight"
)

const defaultFetchTimeout = 10 * time.Second

// Client queries the feed on every call. Concurrent lookups share one
// in-flight feed read; nothing is cached between calls.
type Client struct {
	feed         Feed
	maxAge       time.Duration
	fetchTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger
	metrics      *Metrics
	group        singleflight.Group
}

type Option func(*Client)

// WithMaxAge rejects rounds older than d. Zero disables the check.
func WithMaxAge(d time.Duration) Option {
	return func(c *Client) {
		c.maxAge = d
	}
}

// WithFetchTimeout bounds a shared feed read independently of any one caller.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(feed Feed, opts ...Option) (*Client, error) {
	if feed == nil {
		return nil, errors.New("feed is required")
	}
	c := &Client{
		feed:         feed,
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetEthPrice returns the latest price as a fixed-point integer with
// PriceDecimals decimals.
func (c *Client) GetEthPrice(ctx context.Context) (int64, error) {
	round, err := c.LatestRound(ctx)
	if err != nil {
		return 0, err
	}
	return round.Price, nil
}

// LatestRound returns the full latest round.
func (c *Client) LatestRound(ctx context.Context) (Round, error) {
	start := time.Now()
	round, err := c.latest(ctx)
	if err == nil {
		err = c.checkAge(round)
	}
	c.metrics.ObserveLookup(outcome(err), time.Since(start))
	if err != nil {
		c.logger.WarnContext(ctx, "price feed lookup failed", "error", err)
		return Round{}, err
	}
	return round, nil
}

func (c *Client) latest(ctx context.Context) (Round, error) {
	ch := c.group.DoChan("latest", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		return c.feed.LatestPrice(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return Round{}, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "price lookup cancelled")
	case res := <-ch:
		if res.Err != nil {
			return Round{}, translate(res.Err)
		}
		return res.Val.(Round), nil
	}
}

func (c *Client) checkAge(round Round) error {
	if c.maxAge <= 0 {
		return nil
	}
	if age := c.now().Sub(round.UpdatedAt); age > c.maxAge {
		return dErrors.Wrap(sentinel.ErrStale, dErrors.CodeUnavailable, "price round is stale")
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), CategoryOf(err) == FailureTimeout:
		return dErrors.Wrap(err, dErrors.CodeTimeout, "price feed timed out")
	case CategoryOf(err) == FailureBadData:
		return dErrors.Wrap(err, dErrors.CodeInternal, "price feed returned invalid data")
	default:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "price feed unavailable")
	}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(dErrors.CodeOf(err))
}
