package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and gateway clients return
// these (optionally wrapped) and services translate them into domain errors.
//
//   - ErrNotFound: row or remote record does not exist
//   - ErrConflict: unique constraint hit (email already registered, duplicate order code)
//   - ErrExpired: magic link or SMS code past its expiry
//   - ErrAlreadyUsed: magic link already consumed
//   - ErrInvalidState: entity in wrong state for the requested operation
//   - ErrUnavailable: backing service temporarily unavailable
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
