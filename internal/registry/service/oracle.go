package service

import (
	"context"

	dErrors "awardregistry/pkg/domain-errors"
)

// GetEthPrice returns the feed's latest price with 8 implied decimals. It
// never touches registry state.
func (s *Service) GetEthPrice(ctx context.Context) (price int64, err error) {
	ctx, finish := s.startOperation(ctx, opGetEthPrice)
	defer func() { finish(err) }()

	if s.oracle == nil {
		return 0, dErrors.New(dErrors.CodeUnavailable, "no price oracle configured")
	}
	return s.oracle.GetEthPrice(ctx)
}
