package reqctx

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonwraymond/toolgate/auth"
	"github.com/jonwraymond/toolgate/observe"
	"github.com/jonwraymond/toolgate/tenantstore"
)

// TenancyMode selects how tenant ids are resolved.
type TenancyMode string

const (
	// TenancySingle forces every request onto one fixed tenant.
	TenancySingle TenancyMode = "single"

	// TenancyMulti resolves the tenant from authenticated inputs per call.
	TenancyMulti TenancyMode = "multi"
)

// DefaultTenantID is the tenant used in single-tenant mode when no override
// is configured.
const DefaultTenantID = "default"

// FactoryConfig configures a request-context factory.
type FactoryConfig struct {
	// Tenancy selects single- or multi-tenant resolution.
	// Default: TenancySingle.
	Tenancy TenancyMode

	// DefaultTenant is the fixed tenant id in single-tenant mode.
	// Default: DefaultTenantID.
	DefaultTenant string

	// FallbackTenant is the environment-sourced fallback consulted last in
	// multi-tenant mode. Empty means no fallback.
	FallbackTenant string

	// Strategies creates the per-call authentication strategy.
	Strategies *auth.StrategyFactory

	// Engine makes authorization decisions for the permission service.
	Engine *auth.Engine

	// Store backs tenant-scoped persistence.
	Store *tenantstore.Store

	// Logger receives factory diagnostics. Default: a no-op logger.
	Logger observe.Logger
}

// Factory creates one RequestContext per inbound call. Construction is free
// of side effects on any other in-flight request; nothing the factory builds
// is shared between contexts.
type Factory struct {
	tenancy        TenancyMode
	defaultTenant  string
	fallbackTenant string
	strategies     *auth.StrategyFactory
	engine         *auth.Engine
	store          *tenantstore.Store
	logger         observe.Logger
}

// NewFactory creates a request-context factory, validating its wiring at
// startup.
func NewFactory(config FactoryConfig) (*Factory, error) {
	if config.Tenancy == "" {
		config.Tenancy = TenancySingle
	}
	if config.Tenancy != TenancySingle && config.Tenancy != TenancyMulti {
		return nil, fmt.Errorf("reqctx: unknown tenancy mode %q", config.Tenancy)
	}
	if config.Strategies == nil {
		return nil, fmt.Errorf("reqctx: strategy factory is required")
	}
	if config.Engine == nil {
		return nil, fmt.Errorf("reqctx: authorization engine is required")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("reqctx: tenant store is required")
	}
	if config.DefaultTenant == "" {
		config.DefaultTenant = DefaultTenantID
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}

	return &Factory{
		tenancy:        config.Tenancy,
		defaultTenant:  config.DefaultTenant,
		fallbackTenant: config.FallbackTenant,
		strategies:     config.Strategies,
		engine:         config.Engine,
		store:          config.Store,
		logger:         config.Logger,
	}, nil
}

// CreateOptions are the caller-supplied inputs to CreateContext.
type CreateOptions struct {
	// TenantID is the caller-supplied tenant, if any. Forbidden in
	// single-tenant mode; in multi-tenant mode it is only accepted when it
	// matches the tenant resolved from authenticated inputs.
	TenantID string

	// RequestID is the caller-supplied request id. Generated when empty.
	RequestID string
}

// CreateContext builds the request context for one inbound call.
//
// The tenant id is resolved from the claim set, then session metadata, then
// the configured fallback. It is never taken from the caller-supplied
// parameter alone in multi-tenant mode.
func (f *Factory) CreateContext(ctx context.Context, opts CreateOptions) (*RequestContext, error) {
	state := auth.StateFromContext(ctx)
	strategy := f.strategies.New(state)

	tenantID, err := f.resolveTenant(ctx, state, strategy, opts.TenantID)
	if err != nil {
		return nil, err
	}

	requestID := opts.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	rc := &RequestContext{
		ID:          requestID,
		UserID:      strategy.Identity().UserID,
		TenantID:    tenantID,
		Strategy:    strategy,
		Permissions: NewPermissionService(strategy, f.engine),
		Storage:     f.store.Scoped(tenantID),
	}

	f.logger.Debug(ctx, "request context created",
		observe.Field{Key: "request_id", Value: requestID},
		observe.Field{Key: "tenant_id", Value: tenantID},
	)
	return rc, nil
}

func (f *Factory) resolveTenant(ctx context.Context, state *auth.RuntimeAuthState, strategy auth.Strategy, requested string) (string, error) {
	if f.tenancy == TenancySingle {
		if requested != "" && requested != f.defaultTenant {
			return "", fmt.Errorf("%w: tenant parameter not accepted in single-tenant mode", ErrTenantValidation)
		}
		return f.defaultTenant, nil
	}

	resolved := f.authenticatedTenant(ctx, state, strategy)
	if resolved == "" {
		resolved = f.fallbackTenant
	}
	if resolved == "" {
		return "", fmt.Errorf("%w: no tenant resolvable from claims, session metadata, or fallback", ErrTenantValidation)
	}
	if requested != "" && requested != resolved {
		return "", fmt.Errorf("%w: tenant parameter %q does not match authenticated tenant", ErrTenantValidation, requested)
	}
	return resolved, nil
}

// authenticatedTenant consults the trusted inputs in priority order: decoded
// claims first, then session metadata extras. Caller-supplied values are
// never consulted here.
func (f *Factory) authenticatedTenant(ctx context.Context, state *auth.RuntimeAuthState, strategy auth.Strategy) string {
	if state != nil && state.Claims != nil && state.Claims.TenantID != "" {
		return state.Claims.TenantID
	}
	if cs, ok := strategy.(*auth.ClaimsStrategy); ok {
		if claims := cs.Claims(ctx); claims != nil && claims.TenantID != "" {
			return claims.TenantID
		}
	}
	if state != nil {
		if meta, ok := state.Extra["session"].(map[string]any); ok {
			if tenant, ok := meta["tenant"].(string); ok && tenant != "" {
				return tenant
			}
		}
	}
	return ""
}
