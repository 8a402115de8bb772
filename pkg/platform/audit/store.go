package audit

import (
	"context"

	id "awardregistry/pkg/domain"
)

// Store persists audit events in emission order.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListAll(ctx context.Context) ([]Event, error)
	ListByCompany(ctx context.Context, companyID id.CompanyID) ([]Event, error)
}

// Sink receives a copy of every stored event, e.g. a message broker.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event Event) error
}
