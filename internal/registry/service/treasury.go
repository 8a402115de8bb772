package service

import (
	"context"

	"awardregistry/internal/registry/state"
	id "awardregistry/pkg/domain"
	audit "awardregistry/pkg/platform/audit"
	"awardregistry/pkg/requestcontext"
)

// WithdrawRegistrationCharge pays the whole pooled balance to `to` and resets
// the pool. Owner only. The pool is untouched when the transfer fails.
func (s *Service) WithdrawRegistrationCharge(ctx context.Context, to id.Address) (amount id.Amount, err error) {
	ctx, finish := s.startOperation(ctx, opWithdraw)
	defer func() { finish(err) }()

	caller := requestcontext.Caller(ctx)
	err = s.store.Execute(ctx, func(st *state.State) error {
		pooled, err := st.CanWithdraw(caller, to)
		if err != nil {
			return err
		}
		if err := s.ledger.Transfer(ctx, to, pooled); err != nil {
			return transferFailed(err, "withdrawal transfer failed")
		}
		st.ApplyWithdraw()
		amount = pooled
		return nil
	})
	if err != nil {
		return id.Zero, err
	}

	s.logAudit(ctx, audit.Event{
		Action:       string(audit.EventRegistrationChargeWithdrawn),
		Actor:        caller,
		Counterparty: to,
		Amount:       amount,
	})
	s.metrics.RecordWithdrawal(amount)
	return amount, nil
}

// PooledBalance returns the retained fees not yet withdrawn.
func (s *Service) PooledBalance(ctx context.Context) (balance id.Amount, err error) {
	ctx, finish := s.startOperation(ctx, opPooledBalance)
	defer func() { finish(err) }()

	err = s.store.View(ctx, func(st *state.State) error {
		balance = st.PooledBalance()
		return nil
	})
	if err != nil {
		return id.Zero, err
	}
	return balance, nil
}

// RegistrationFee returns the fixed fee retained per registration.
func (s *Service) RegistrationFee(ctx context.Context) (fee id.Amount, err error) {
	err = s.store.View(ctx, func(st *state.State) error {
		fee = st.RegistrationFee()
		return nil
	})
	if err != nil {
		return id.Zero, err
	}
	return fee, nil
}
