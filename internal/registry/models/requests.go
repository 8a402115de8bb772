package models

import (
	id "awardregistry/pkg/domain"
)

// RegisterRequest carries the caller-supplied fields of a registration. The
// payment identity is never part of the request; it is the caller.
type RegisterRequest struct {
	CompanyID id.CompanyID `json:"company_id"`
	Name      string       `json:"name"`
	Contact   string       `json:"contact"`
}

// UpdateUserRequest replaces a member's mutable profile fields.
type UpdateUserRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}
