package audit

import (
	"time"

	id "awardregistry/pkg/domain"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
// Sinks may route or retain categories differently.
type EventCategory string

const (
	// CategoryFinancial covers events that move value: retained fees,
	// refunds, withdrawals and prizes. These must reach every sink.
	CategoryFinancial EventCategory = "financial"

	// CategoryAccess covers changes to who may act on the registry.
	CategoryAccess EventCategory = "access"

	// CategoryOperations covers routine catalog and profile changes.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic after an operation commits. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// Actor is the payment identity that invoked the operation.
	Actor     id.Address
	CompanyID id.CompanyID
	UserID    id.UserID
	// Counterparty receives value (refund, withdrawal, prize) or ownership.
	Counterparty id.Address
	Amount       id.Amount
	RequestID    string
}

type AuditEvent string

const (
	// Catalog events
	EventCompanyCreated AuditEvent = "company_created"

	// Membership events
	EventUserRegistered AuditEvent = "user_registered"
	EventUserUpdated    AuditEvent = "user_updated"
	EventUserDeleted    AuditEvent = "user_deleted"

	// Treasury and award events
	EventRegistrationChargeWithdrawn AuditEvent = "registration_charge_withdrawn"
	EventAwardDistributed            AuditEvent = "award_distributed"

	// Access events
	EventOwnershipTransferred AuditEvent = "ownership_transferred"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserRegistered:              CategoryFinancial,
	EventRegistrationChargeWithdrawn: CategoryFinancial,
	EventAwardDistributed:            CategoryFinancial,

	EventOwnershipTransferred: CategoryAccess,

	EventCompanyCreated: CategoryOperations,
	EventUserUpdated:    CategoryOperations,
	EventUserDeleted:    CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
