package testutil

import (
	"context"
	"time"

	id "awardregistry/pkg/domain"
	"awardregistry/pkg/requestcontext"
)

// AsCaller returns a background context carrying caller as the invoking
// identity. This simulates what an entry point does for an authenticated call.
func AsCaller(caller id.Address) context.Context {
	return requestcontext.WithCaller(context.Background(), caller)
}

// AsCallerAt is AsCaller with a fixed request time and request id.
func AsCallerAt(caller id.Address, at time.Time, requestID string) context.Context {
	ctx := requestcontext.WithCaller(context.Background(), caller)
	ctx = requestcontext.WithTime(ctx, at)
	return requestcontext.WithRequestID(ctx, requestID)
}

// Address builds a deterministic address whose last byte is b.
func Address(b byte) id.Address {
	var a id.Address
	a[id.AddressLength-1] = b
	return a
}
