package models

import (
	id "awardregistry/pkg/domain"
	dErrors "awardregistry/pkg/domain-errors"
)

// Member is an individual registered under one company.
//
// Invariants:
//   - ID, CompanyID and PaymentIdentity are immutable after registration
//   - PaymentIdentity is the identity that paid the fee; it receives refunds
//     and prizes and is the only identity allowed to update or delete the record
type Member struct {
	ID              id.UserID    `json:"id"`
	CompanyID       id.CompanyID `json:"company_id"`
	Name            string       `json:"name"`
	Contact         string       `json:"contact"`
	PaymentIdentity id.Address   `json:"payment_identity"`
}

func NewMember(userID id.UserID, companyID id.CompanyID, name, contact string, identity id.Address) (Member, error) {
	if userID.IsNil() || companyID.IsNil() {
		return Member{}, dErrors.New(dErrors.CodeInvariantViolation, "member ids must be positive")
	}
	if identity.IsZero() {
		return Member{}, dErrors.New(dErrors.CodeInvariantViolation, "payment identity is required")
	}
	m := Member{ID: userID, CompanyID: companyID, PaymentIdentity: identity}
	if err := m.ApplyProfile(name, contact); err != nil {
		return Member{}, err
	}
	return m, nil
}

// ApplyProfile replaces the mutable fields, stored exactly as given.
func (m *Member) ApplyProfile(name, contact string) error {
	if err := checkFieldLength("member name", name); err != nil {
		return err
	}
	if err := checkFieldLength("contact", contact); err != nil {
		return err
	}
	m.Name = name
	m.Contact = contact
	return nil
}
