package service

import (
	"context"

	"awardregistry/internal/award"
	"awardregistry/internal/registry/models"
	"awardregistry/internal/registry/state"
	id "awardregistry/pkg/domain"
	dErrors "awardregistry/pkg/domain-errors"
	audit "awardregistry/pkg/platform/audit"
	"awardregistry/pkg/requestcontext"
)

// DistributeAward pays prize to one member of the company chosen by the
// entropy seed. Owner only. The seed is predictable to anyone who can observe
// or influence its inputs; selection is not suitable for adversarial settings.
func (s *Service) DistributeAward(ctx context.Context, companyID id.CompanyID, prize id.Amount) (result *models.Award, err error) {
	ctx, finish := s.startOperation(ctx, opDistributeAward, companyAttr(companyID))
	defer func() { finish(err) }()

	caller := requestcontext.Caller(ctx)
	var out models.Award
	err = s.store.Execute(ctx, func(st *state.State) error {
		count, err := st.CanDistribute(caller, companyID, prize)
		if err != nil {
			return err
		}
		if s.entropy == nil {
			return dErrors.New(dErrors.CodeUnavailable, "no entropy source configured")
		}
		seed, err := s.entropy.Seed(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "entropy source unavailable")
		}
		pos, err := award.Select(seed, count)
		if err != nil {
			return err
		}
		winner, err := st.MemberAt(companyID, pos)
		if err != nil {
			return err
		}
		if err := s.ledger.Transfer(ctx, winner.PaymentIdentity, prize); err != nil {
			return transferFailed(err, "prize transfer failed")
		}
		out = models.Award{
			CompanyID:   companyID,
			Winner:      winner,
			Position:    pos,
			MemberCount: count,
			Prize:       prize,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.Event{
		Action:       string(audit.EventAwardDistributed),
		Actor:        caller,
		CompanyID:    companyID,
		UserID:       out.Winner.ID,
		Counterparty: out.Winner.PaymentIdentity,
		Amount:       prize,
	})
	s.metrics.RecordAward(prize)
	return &out, nil
}
