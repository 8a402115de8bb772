package state

import (
	id "awardregistry/pkg/domain"
	dErrors "awardregistry/pkg/domain-errors"
)

// CanWithdraw checks ownership and a non-empty pool and returns the amount
// ApplyWithdraw will release.
func (s *State) CanWithdraw(caller, to id.Address) (id.Amount, error) {
	if err := s.ownership.RequireOwner(caller); err != nil {
		return id.Zero, err
	}
	if to.IsZero() {
		return id.Zero, dErrors.New(dErrors.CodeValidation, "withdrawal recipient is required")
	}
	if s.pooled.IsZero() {
		return id.Zero, dErrors.New(dErrors.CodeZeroBalance, "no registration fees to withdraw")
	}
	return s.pooled, nil
}

// ApplyWithdraw resets the pool. Call only after the transfer succeeded.
func (s *State) ApplyWithdraw() {
	s.pooled = id.Zero
}
