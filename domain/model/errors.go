package model

import "errors"

var (
	// ErrScheduleParse marks a malformed per-owner quiet hours schedule.
	// Non-fatal: the owner is skipped and the run continues.
	ErrScheduleParse = errors.New("schedule parse error")
	// ErrFilterResolution marks an unknown value in a filter dimension.
	// The dimension fails closed and matches nothing.
	ErrFilterResolution = errors.New("filter resolution error")
	// ErrClassificationData marks a malformed workspace record. The workspace
	// is default-categorized and the run continues.
	ErrClassificationData = errors.New("classification data error")

	// ErrStopRejected marks a stop build refused by reason-string validation.
	ErrStopRejected = errors.New("stop rejected")
	// ErrStopTransient marks a retryable stop failure (timeout, 5xx).
	ErrStopTransient = errors.New("stop failed transiently")
	// ErrStopPermanent marks a stop failure that will not succeed on retry.
	ErrStopPermanent = errors.New("stop failed permanently")

	// ErrGatewayUnreachable is the only run-fatal condition: the platform
	// could not be reached at startup.
	ErrGatewayUnreachable = errors.New("platform gateway unreachable")
)
