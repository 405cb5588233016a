package reqctx

import (
	"context"
	"time"

	"github.com/jonwraymond/toolgate/auth"
	"github.com/jonwraymond/toolgate/cache"
)

// probeTTL bounds how long a permission probe stays cached. The cache itself
// is request-scoped, so the TTL only matters for unusually long calls.
const probeTTL = time.Minute

// PermissionService answers permission probes for one request. It memoizes
// repeated probes for the same (operation, resource) pair within the request;
// the backing cache is owned by the service and dies with it.
type PermissionService struct {
	strategy auth.Strategy
	engine   *auth.Engine
	probes   cache.Cache
	keyer    *cache.DecisionKeyer
}

// NewPermissionService creates a permission service bound to one call's
// strategy.
func NewPermissionService(strategy auth.Strategy, engine *auth.Engine) *PermissionService {
	return &PermissionService{
		strategy: strategy,
		engine:   engine,
		probes:   cache.NewMemoryCache(),
		keyer:    cache.NewDecisionKeyer(),
	}
}

// Authorize decides whether the request may run the operation. Decisions are
// full per-call evaluations and are not memoized: the narrowed session they
// carry must be freshly derived every time.
func (p *PermissionService) Authorize(ctx context.Context, operation string, args map[string]any) auth.Decision {
	return p.engine.Authorize(ctx, p.claims(ctx), operation, args)
}

// Allowed reports whether the operation on the named resource would be
// permitted. Probes are memoized within the request; the boolean carries no
// session, so caching it is safe.
func (p *PermissionService) Allowed(ctx context.Context, operation, resource string) bool {
	claims := p.claims(ctx)

	principal := ""
	if claims != nil {
		principal = claims.Subject
	}
	key := p.keyer.Key(principal, operation, resource)
	if value, ok := p.probes.Get(ctx, key); ok {
		return value[0] == 1
	}

	capability, ok := p.engine.Capabilities()[operation]
	args := map[string]any{}
	if ok && resource != "" {
		args[capability.ResourceArg] = resource
	}
	decision := p.engine.Authorize(ctx, claims, operation, args)

	cached := byte(0)
	if decision.Allowed {
		cached = 1
	}
	// Best effort; a failed cache write just means re-evaluation.
	_ = p.probes.Set(ctx, key, []byte{cached}, probeTTL)
	return decision.Allowed
}

func (p *PermissionService) claims(ctx context.Context) *auth.ClaimSet {
	if cs, ok := p.strategy.(*auth.ClaimsStrategy); ok {
		return cs.Claims(ctx)
	}
	return nil
}
