package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrUpstream wraps any other failure reported by a hosted model endpoint.
var ErrUpstream = errors.New("ai upstream error")

// ErrUnparseable marks a model reply that does not follow the requested format.
var ErrUnparseable = errors.New("unparseable model reply")
