// Package errors contains domain-specific errors for the download domain
package errors

import (
	pkgerrors "github.com/patt509/YT-Downloader/pkg/errors"
)

// Domain errors, one per user-visible outcome
var (
	ErrInvalidLink       = pkgerrors.NewValidationError("link is not a supported YouTube link")
	ErrVideoTooLong      = pkgerrors.NewValidationError("video exceeds the duration limit")
	ErrNoStreamAvailable = pkgerrors.NewNotFoundError("no suitable stream available")
	ErrResolutionFailed  = pkgerrors.NewInternalError("media resolution failed")
	ErrDeliveryFailed    = pkgerrors.NewInternalError("file delivery failed")
	ErrTimeout           = pkgerrors.NewTimeoutError("operation deadline exceeded")
)

// Resolver errors. Only ErrSourceUnavailable is worth another attempt.
var (
	ErrMalformedVideoID  = pkgerrors.NewValidationError("malformed video id")
	ErrLoginRequired     = pkgerrors.NewUnauthorizedError("video requires a signed-in viewer")
	ErrMediaRestricted   = pkgerrors.NewPermissionError("video is private or not playable")
	ErrSourceUnavailable = pkgerrors.NewUnavailableError("media source unavailable")
)

// Internal errors that never reach the user directly
var (
	ErrInvalidCallback   = pkgerrors.NewValidationError("invalid callback data")
	ErrFileStoreReleased = pkgerrors.NewConflictError("file handle already released")
)
