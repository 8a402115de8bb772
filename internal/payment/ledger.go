// Package payment models the outgoing side of the registry's money flow:
// refunds of overpaid fees, award prizes and treasury withdrawals.
package payment

import (
	"context"
	"fmt"
	"sync"

	id "awardregistry/pkg/domain"
	"awardregistry/pkg/platform/sentinel"
)

// Ledger performs an outgoing transfer. Implementations must either complete
// the transfer or return an error having moved nothing.
type Ledger interface {
	Transfer(ctx context.Context, to id.Address, amount id.Amount) error
}

// Transfer records one completed payout.
type Transfer struct {
	To     id.Address
	Amount id.Amount
}

// InMemoryLedger credits balances in memory. It is the default ledger and the
// one tests inspect to assert refunds and payouts.
type InMemoryLedger struct {
	mu        sync.RWMutex
	balances  map[id.Address]id.Amount
	transfers []Transfer
	failNext  error
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{balances: make(map[id.Address]id.Amount)}
}

func (l *InMemoryLedger) Transfer(ctx context.Context, to id.Address, amount id.Amount) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", sentinel.ErrTransfer, err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failNext != nil {
		err := l.failNext
		l.failNext = nil
		return fmt.Errorf("%w: %w", sentinel.ErrTransfer, err)
	}
	if to.IsZero() {
		return fmt.Errorf("%w: recipient is required", sentinel.ErrTransfer)
	}
	l.balances[to] = l.balances[to].Add(amount)
	l.transfers = append(l.transfers, Transfer{To: to, Amount: amount})
	return nil
}

// FailNext makes the next Transfer return err without moving funds.
func (l *InMemoryLedger) FailNext(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failNext = err
}

// Balance returns everything credited to addr so far.
func (l *InMemoryLedger) Balance(addr id.Address) id.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[addr]
}

// Transfers returns completed transfers in order.
func (l *InMemoryLedger) Transfers() []Transfer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Transfer{}, l.transfers...)
}
