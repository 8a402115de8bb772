package service

import (
	"context"

	"awardregistry/internal/registry/state"
	id "awardregistry/pkg/domain"
	audit "awardregistry/pkg/platform/audit"
	"awardregistry/pkg/requestcontext"
)

// TransferOwnership hands the owner capability to next. Current owner only.
func (s *Service) TransferOwnership(ctx context.Context, next id.Address) (err error) {
	ctx, finish := s.startOperation(ctx, opTransferOwnership)
	defer func() { finish(err) }()

	caller := requestcontext.Caller(ctx)
	err = s.store.Execute(ctx, func(st *state.State) error {
		if err := st.CanTransferOwnership(caller, next); err != nil {
			return err
		}
		st.ApplyTransferOwnership(next)
		return nil
	})
	if err != nil {
		return err
	}

	s.logAudit(ctx, audit.Event{
		Action:       string(audit.EventOwnershipTransferred),
		Actor:        caller,
		Counterparty: next,
	})
	return nil
}

func (s *Service) Owner(ctx context.Context) (owner id.Address, err error) {
	ctx, finish := s.startOperation(ctx, opOwner)
	defer func() { finish(err) }()

	err = s.store.View(ctx, func(st *state.State) error {
		owner = st.Owner()
		return nil
	})
	return owner, err
}
