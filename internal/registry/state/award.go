package state

import (
	"awardregistry/internal/registry/models"
	id "awardregistry/pkg/domain"
	dErrors "awardregistry/pkg/domain-errors"
)

// CanDistribute validates an award request and returns the candidate count.
func (s *State) CanDistribute(caller id.Address, companyID id.CompanyID, prize id.Amount) (int, error) {
	if err := s.ownership.RequireOwner(caller); err != nil {
		return 0, err
	}
	if prize.IsZero() {
		return 0, dErrors.New(dErrors.CodeInsufficientPayment, "prize must be positive")
	}
	if err := s.requireCompany(companyID); err != nil {
		return 0, err
	}
	count := len(s.members[companyID])
	if count == 0 {
		return 0, dErrors.New(dErrors.CodeEmptyCollection, "company has no members")
	}
	return count, nil
}

// MemberAt returns the member at position i of a company's list.
func (s *State) MemberAt(companyID id.CompanyID, i int) (models.Member, error) {
	list := s.members[companyID]
	if i < 0 || i >= len(list) {
		return models.Member{}, dErrors.New(dErrors.CodeInvariantViolation, "selected position out of range")
	}
	return list[i], nil
}
