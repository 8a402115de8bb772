package service

import (
	"context"
	"errors"

	"awardregistry/internal/registry/models"
	"awardregistry/internal/registry/state"
	id "awardregistry/pkg/domain"
	dErrors "awardregistry/pkg/domain-errors"
	audit "awardregistry/pkg/platform/audit"
	"awardregistry/pkg/requestcontext"
)

// RegisterUser registers the caller as a member of a company. Exactly the
// registration fee is retained; any excess is refunded to the caller within
// the same operation. A failed refund leaves no trace of the registration.
func (s *Service) RegisterUser(ctx context.Context, companyID id.CompanyID, name, contact string, payment id.Amount) (reg *models.Registration, err error) {
	ctx, finish := s.startOperation(ctx, opRegisterUser, companyAttr(companyID))
	defer func() { finish(err) }()

	req := models.RegisterRequest{CompanyID: companyID, Name: name, Contact: contact}

	caller := requestcontext.Caller(ctx)
	var plan state.RegistrationPlan
	err = s.store.Execute(ctx, func(st *state.State) error {
		p, err := st.CanRegister(caller, req, payment)
		if err != nil {
			return err
		}
		if !p.Refund.IsZero() {
			if err := s.ledger.Transfer(ctx, caller, p.Refund); err != nil {
				return transferFailed(err, "refund transfer failed")
			}
		}
		st.ApplyRegister(p)
		plan = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.Event{
		Action:       string(audit.EventUserRegistered),
		Actor:        caller,
		CompanyID:    plan.Member.CompanyID,
		UserID:       plan.Member.ID,
		Counterparty: refundRecipient(caller, plan.Refund),
		Amount:       plan.Retained,
	})
	s.metrics.RecordRegistration(plan.Retained, plan.Refund)
	return &models.Registration{
		Member:   plan.Member,
		Retained: plan.Retained,
		Refunded: plan.Refund,
	}, nil
}

// UpdateUser changes a member's name and contact. Only the member's own
// payment identity may update it.
func (s *Service) UpdateUser(ctx context.Context, userID id.UserID, name, contact string) (member *models.Member, err error) {
	ctx, finish := s.startOperation(ctx, opUpdateUser, userAttr(userID))
	defer func() { finish(err) }()

	req := models.UpdateUserRequest{Name: name, Contact: contact}

	caller := requestcontext.Caller(ctx)
	var updated models.Member
	err = s.store.Execute(ctx, func(st *state.State) error {
		m, err := st.CanUpdateUser(caller, userID, req)
		if err != nil {
			return err
		}
		st.ApplyUpdateUser(m)
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.Event{
		Action:    string(audit.EventUserUpdated),
		Actor:     caller,
		CompanyID: updated.CompanyID,
		UserID:    updated.ID,
	})
	return &updated, nil
}

// DeleteUser removes a member with a swap-delete. Only the member's own
// payment identity may delete it. The fee is not refunded.
func (s *Service) DeleteUser(ctx context.Context, userID id.UserID) (err error) {
	ctx, finish := s.startOperation(ctx, opDeleteUser, userAttr(userID))
	defer func() { finish(err) }()

	caller := requestcontext.Caller(ctx)
	var plan state.DeletionPlan
	err = s.store.Execute(ctx, func(st *state.State) error {
		p, err := st.CanDeleteUser(caller, userID)
		if err != nil {
			return err
		}
		st.ApplyDeleteUser(p)
		plan = p
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil && plan.Moved != nil {
		s.logger.DebugContext(ctx, "member moved into vacated slot",
			"company_id", plan.Member.CompanyID,
			"moved_user_id", plan.Moved.ID,
			"position", plan.Position,
		)
	}
	s.logAudit(ctx, audit.Event{
		Action:    string(audit.EventUserDeleted),
		Actor:     caller,
		CompanyID: plan.Member.CompanyID,
		UserID:    plan.Member.ID,
	})
	s.metrics.IncrementUsersDeleted()
	return nil
}

func (s *Service) GetUser(ctx context.Context, userID id.UserID) (member *models.Member, err error) {
	ctx, finish := s.startOperation(ctx, opGetUser, userAttr(userID))
	defer func() { finish(err) }()

	var m models.Member
	err = s.store.View(ctx, func(st *state.State) error {
		found, err := st.Member(userID)
		if err != nil {
			return err
		}
		m = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func refundRecipient(caller id.Address, refund id.Amount) id.Address {
	if refund.IsZero() {
		return id.Address{}
	}
	return caller
}

func transferFailed(err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
}
