package service

import (
	"context"

	"awardregistry/pkg/attrs"
	audit "awardregistry/pkg/platform/audit"
	"awardregistry/pkg/requestcontext"
)

// logAudit writes the committed event to the structured log and hands it to
// the publisher. Publishing failures are logged and never fail the operation,
// which has already committed.
func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	event.RequestID = requestcontext.RequestID(ctx)
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}

	args := attrs.NonZero(
		"company_id", event.CompanyID,
		"user_id", event.UserID,
		"actor", event.Actor,
		"counterparty", event.Counterparty,
		"amount", event.Amount,
		"request_id", event.RequestID,
	)
	args = append(args, "event", event.Action, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event.Action, args...)
	}
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to publish audit event",
			"event", event.Action,
			"request_id", event.RequestID,
			"error", err,
		)
	}
}
