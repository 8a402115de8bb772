// Package access holds the single-owner capability that gates administrative
// registry operations.
package access

import (
	id "awardregistry/pkg/domain"
	dErrors "awardregistry/pkg/domain-errors"
)

// Ownership is held by exactly one identity at a time. Only the current
// holder can hand it to another identity; there is no accept step.
//
// Ownership is a plain value so it can live inside the registry state and be
// mutated under the same lock as the rest of the aggregate.
type Ownership struct {
	owner id.Address
}

// NewOwnership assigns the capability to owner.
func NewOwnership(owner id.Address) (Ownership, error) {
	if owner.IsZero() {
		return Ownership{}, dErrors.New(dErrors.CodeValidation, "owner identity is required")
	}
	return Ownership{owner: owner}, nil
}

// Owner returns the current holder.
func (o Ownership) Owner() id.Address {
	return o.owner
}

// RequireOwner fails with Unauthorized unless caller holds the capability.
func (o Ownership) RequireOwner(caller id.Address) error {
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if caller != o.owner {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the owner")
	}
	return nil
}

// CanTransfer validates a handoff from caller to next without applying it.
func (o Ownership) CanTransfer(caller, next id.Address) error {
	if err := o.RequireOwner(caller); err != nil {
		return err
	}
	if next.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "new owner identity is required")
	}
	return nil
}

// ApplyTransfer moves the capability. Call CanTransfer first.
func (o *Ownership) ApplyTransfer(next id.Address) {
	o.owner = next
}

// Transfer validates and applies a handoff in one call.
func (o *Ownership) Transfer(caller, next id.Address) error {
	if err := o.CanTransfer(caller, next); err != nil {
		return err
	}
	o.ApplyTransfer(next)
	return nil
}

// RequireSelf fails with Unauthorized unless caller equals the stored identity
// of the record being mutated.
func RequireSelf(caller, stored id.Address) error {
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if caller != stored {
		return dErrors.New(dErrors.CodeUnauthorized, "caller does not own this record")
	}
	return nil
}
