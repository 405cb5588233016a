package reqctx

import (
	"context"

	"github.com/jonwraymond/toolgate/auth"
	"github.com/jonwraymond/toolgate/tenantstore"
)

// RequestContext is the immutable-after-construction bundle for one inbound
// call. It lives exactly as long as the call and is never hoisted into any
// process-wide structure.
type RequestContext struct {
	// ID is the request id, caller-supplied or generated.
	ID string

	// UserID is the resolved user, empty when the strategy could not
	// resolve one.
	UserID string

	// TenantID is the resolved tenant.
	TenantID string

	// Strategy is the call's authentication strategy instance.
	Strategy auth.Strategy

	// Permissions is the request-scoped permission-check service.
	Permissions *PermissionService

	// Storage is persistence fixed to the resolved tenant.
	Storage *tenantstore.Scoped
}

type contextKey int

const requestContextKey contextKey = iota

// Attach returns a child context carrying rc. The returned Handle detaches
// idempotently, so nested attach/detach pairs unwind in any order.
func Attach(ctx context.Context, rc *RequestContext) (context.Context, Handle) {
	return context.WithValue(ctx, requestContextKey, rc), Handle{rc: rc}
}

// FromContext returns the active request context, or ErrContextUnavailable
// when none is attached.
func FromContext(ctx context.Context) (*RequestContext, error) {
	rc, _ := ctx.Value(requestContextKey).(*RequestContext)
	if rc == nil {
		return nil, ErrContextUnavailable
	}
	return rc, nil
}

// Handle marks one Attach for later release. Release is idempotent.
type Handle struct {
	rc *RequestContext
}

// Release drops the handle's reference. The request context itself becomes
// collectible once the call's context chain is dropped; Release exists so
// transports can defer cleanup without tracking attach order.
func (h *Handle) Release() {
	h.rc = nil
}

// Active reports whether the handle still references a request context.
func (h *Handle) Active() bool {
	return h.rc != nil
}
