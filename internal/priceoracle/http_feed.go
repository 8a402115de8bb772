package priceoracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"awardregistry/pkg/platform/circuit"
	"awardregistry/pkg/platform/sentinel"
)

const maxFeedResponse = 64 << 10

// HTTPFeed reads the latest round from a JSON endpoint of the form
// {"price": 312345000000, "updated_at": 1760000000, "round_id": 18446744073709}.
// updated_at is in unix seconds.
type HTTPFeed struct {
	url     string
	client  *http.Client
	breaker *circuit.Breaker
	metrics *Metrics
}

type HTTPFeedOption func(*HTTPFeed)

func WithHTTPClient(client *http.Client) HTTPFeedOption {
	return func(f *HTTPFeed) {
		f.client = client
	}
}

func WithBreaker(b *circuit.Breaker) HTTPFeedOption {
	return func(f *HTTPFeed) {
		f.breaker = b
	}
}

func WithFeedMetrics(m *Metrics) HTTPFeedOption {
	return func(f *HTTPFeed) {
		f.metrics = m
	}
}

func NewHTTPFeed(url string, timeout time.Duration, opts ...HTTPFeedOption) *HTTPFeed {
	f := &HTTPFeed{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		breaker: circuit.New("price_feed"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type roundPayload struct {
	Price     *int64 `json:"price"`
	UpdatedAt int64  `json:"updated_at"`
	RoundID   uint64 `json:"round_id"`
}

func (f *HTTPFeed) LatestPrice(ctx context.Context) (Round, error) {
	if !f.breaker.Allow() {
		return Round{}, f.fail(FailureOutage, "circuit open", sentinel.ErrUnavailable)
	}

	round, err := f.fetch(ctx)
	if err != nil {
		// Bad payloads mean the feed is up; only transport faults trip the circuit.
		if CategoryOf(err) != FailureBadData {
			open, _ := f.breaker.RecordFailure()
			f.metrics.SetBreakerState(open)
		}
		return Round{}, err
	}
	if _, change := f.breaker.RecordSuccess(); change.Closed {
		f.metrics.SetBreakerState(false)
	}
	return round, nil
}

func (f *HTTPFeed) fetch(ctx context.Context) (Round, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return Round{}, f.fail(FailureOutage, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return Round{}, f.fail(FailureTimeout, "request timed out", err)
		}
		return Round{}, f.fail(FailureOutage, "request failed", errors.Join(sentinel.ErrUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Round{}, f.fail(FailureOutage, fmt.Sprintf("unexpected status %d", resp.StatusCode), sentinel.ErrUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedResponse))
	if err != nil {
		return Round{}, f.fail(FailureOutage, "read body", err)
	}
	var payload roundPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Round{}, f.fail(FailureBadData, "decode round", err)
	}
	if payload.Price == nil {
		return Round{}, f.fail(FailureBadData, "round has no price", nil)
	}
	return Round{
		Price:     *payload.Price,
		UpdatedAt: time.Unix(payload.UpdatedAt, 0).UTC(),
		RoundID:   payload.RoundID,
	}, nil
}

func (f *HTTPFeed) fail(category FailureCategory, msg string, err error) *FeedError {
	return &FeedError{Category: category, Feed: f.url, Message: msg, Err: err}
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
