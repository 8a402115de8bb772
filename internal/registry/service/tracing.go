package service

import (
	"context"
	"time"

	id "awardregistry/pkg/domain"
	dErrors "awardregistry/pkg/domain-errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("awardregistry.registry")

const (
	opCreateCompany     = "create_company"
	opGetCompany        = "get_company"
	opListCompanies     = "list_companies"
	opRegisterUser      = "register_user"
	opUpdateUser        = "update_user"
	opDeleteUser        = "delete_user"
	opGetUser           = "get_user"
	opWithdraw          = "withdraw_registration_charge"
	opPooledBalance     = "pooled_balance"
	opDistributeAward   = "distribute_award"
	opTransferOwnership = "transfer_ownership"
	opOwner             = "owner"
	opGetEthPrice       = "get_eth_price"
)

// startOperation opens a span for op and returns a finisher that records the
// outcome on the span and in the latency histogram.
func (s *Service) startOperation(ctx context.Context, op string, kv ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "Registry."+op, trace.WithAttributes(kv...))
	return ctx, func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = string(dErrors.CodeOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
		s.metrics.ObserveOperation(op, outcome, time.Since(start))
	}
}

func companyAttr(companyID id.CompanyID) attribute.KeyValue {
	return attribute.Int64("registry.company_id", int64(companyID))
}

func userAttr(userID id.UserID) attribute.KeyValue {
	return attribute.Int64("registry.user_id", int64(userID))
}
