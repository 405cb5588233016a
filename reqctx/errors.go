package reqctx

import "errors"

// Sentinel errors for request-context handling.
var (
	// ErrContextUnavailable indicates core code ran outside any active
	// call. This is a programming error (e.g. a background job touching
	// request state), not a runtime condition to recover from.
	ErrContextUnavailable = errors.New("reqctx: no request context active; call sites must run inside an inbound call")

	// ErrTenantValidation indicates tenant resolution violated the
	// deployment mode's rule.
	ErrTenantValidation = errors.New("reqctx: tenant validation failed")
)
