package models

import (
	id "awardregistry/pkg/domain"
)

// Registration is the outcome of a successful self-registration.
type Registration struct {
	Member   Member    `json:"member"`
	Retained id.Amount `json:"retained"`
	Refunded id.Amount `json:"refunded"`
}

// Award is the outcome of a prize distribution.
type Award struct {
	CompanyID   id.CompanyID `json:"company_id"`
	Winner      Member       `json:"winner"`
	Position    int          `json:"position"`
	MemberCount int          `json:"member_count"`
	Prize       id.Amount    `json:"prize"`
}
