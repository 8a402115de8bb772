// Package priceoracle reads the native currency price from an external feed.
package priceoracle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// PriceDecimals is the fixed-point scale of Round.Price.
const PriceDecimals = 8

// Round is one price observation reported by the feed.
type Round struct {
	Price     int64
	UpdatedAt time.Time
	RoundID   uint64
}

// Feed is the external price-feed collaborator. It is only ever read.
type Feed interface {
	LatestPrice(ctx context.Context) (Round, error)
}

// FailureCategory normalizes feed failures across adapters.
type FailureCategory string

const (
	FailureTimeout FailureCategory = "timeout"
	FailureBadData FailureCategory = "bad_data"
	FailureOutage  FailureCategory = "outage"
)

// FeedError wraps adapter failures with a normalized category.
type FeedError struct {
	Category FailureCategory
	Feed     string
	Message  string
	Err      error
}

func (e *FeedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("price feed %s [%s]: %s: %v", e.Feed, e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("price feed %s [%s]: %s", e.Feed, e.Category, e.Message)
}

func (e *FeedError) Unwrap() error { return e.Err }

// CategoryOf extracts the failure category, defaulting to outage.
func CategoryOf(err error) FailureCategory {
	var fe *FeedError
	if errors.As(err, &fe) {
		return fe.Category
	}
	return FailureOutage
}

// StaticFeed serves a fixed round. Useful for tests and offline deployments.
type StaticFeed struct {
	mu    sync.RWMutex
	round Round
	err   error
	calls int
}

func NewStaticFeed(round Round) *StaticFeed {
	return &StaticFeed{round: round}
}

func (f *StaticFeed) LatestPrice(ctx context.Context) (Round, error) {
	if err := ctx.Err(); err != nil {
		return Round{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return Round{}, f.err
	}
	return f.round, nil
}

// Set replaces the served round and clears any configured error.
func (f *StaticFeed) Set(round Round) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.round = round
	f.err = nil
}

// Fail makes subsequent reads return err.
func (f *StaticFeed) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Calls reports how many reads reached the feed.
func (f *StaticFeed) Calls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls
}
