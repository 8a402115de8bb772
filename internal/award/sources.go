package award

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	_ EntropySource = (*FixedSource)(nil)
	_ EntropySource = (*SequenceSource)(nil)
	_ EntropySource = (*ClockSource)(nil)
	_ EntropySource = (*ChainSource)(nil)
)

// FixedSource always returns the same seed.
type FixedSource struct {
	seed Seed
}

func NewFixedSource(seed Seed) *FixedSource {
	return &FixedSource{seed: seed}
}

func (f *FixedSource) Seed(context.Context) (Seed, error) {
	return f.seed, nil
}

// SequenceSource returns the configured seeds in order, repeating the last one.
type SequenceSource struct {
	mu    sync.Mutex
	seeds []Seed
	next  int
}

func NewSequenceSource(seeds ...Seed) *SequenceSource {
	return &SequenceSource{seeds: seeds}
}

func (s *SequenceSource) Seed(context.Context) (Seed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.seeds) == 0 {
		return Seed{}, fmt.Errorf("award: sequence source has no seeds")
	}
	seed := s.seeds[s.next]
	if s.next < len(s.seeds)-1 {
		s.next++
	}
	return seed, nil
}

// ClockSource derives a seed locally: a per-source call counter as height and
// the wall clock as time. Difficulty is always zero.
type ClockSource struct {
	height atomic.Uint64
	now    func() time.Time
}

func NewClockSource(now func() time.Time) *ClockSource {
	if now == nil {
		now = time.Now
	}
	return &ClockSource{now: now}
}

func (c *ClockSource) Seed(context.Context) (Seed, error) {
	return Seed{Height: c.height.Add(1), Time: c.now()}, nil
}

// RPCCaller is the subset of the JSON-RPC client used by ChainSource.
type RPCCaller interface {
	Call(ctx context.Context, method string, params []any, result any) error
}

// ChainSource reads the chain tip height and current difficulty from a node.
type ChainSource struct {
	rpc RPCCaller
	now func() time.Time
}

func NewChainSource(rpc RPCCaller, now func() time.Time) *ChainSource {
	if now == nil {
		now = time.Now
	}
	return &ChainSource{rpc: rpc, now: now}
}

func (c *ChainSource) Seed(ctx context.Context) (Seed, error) {
	var (
		height     uint64
		difficulty float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.rpc.Call(gctx, "getblockcount", nil, &height); err != nil {
			return fmt.Errorf("award: chain height: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.rpc.Call(gctx, "getdifficulty", nil, &difficulty); err != nil {
			return fmt.Errorf("award: chain difficulty: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Seed{}, err
	}
	if difficulty < 0 {
		difficulty = 0
	}
	return Seed{Height: height, Time: c.now(), Difficulty: uint64(difficulty)}, nil
}
