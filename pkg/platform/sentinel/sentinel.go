package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, ledgers and feed adapters
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// For rejections of caller input use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrTransfer     = errors.New("transfer failed")
	ErrStale        = errors.New("stale data")
)
