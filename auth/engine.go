package auth

import (
	"context"
	"fmt"
	"time"
)

// Decision reasons. Tests and transport translation key off these prefixes,
// so "missing permission" and "resource not allowed" are never conflated.
const (
	ReasonMissingPermission  = "missing permission"
	ReasonResourceNotAllowed = "resource not allowed"
	ReasonUnknownOperation   = "unknown operation"
	ReasonClaimsRequired     = "claims required"
	ReasonCapabilityFallback = "capability fallback"
)

// Capability maps an operation to the permission it requires and the call
// argument naming its resource.
type Capability struct {
	// Action is the required permission (e.g. "read", "write").
	Action string

	// ResourceArg is the operation argument carrying the resource name
	// (e.g. "bucket").
	ResourceArg string
}

// DefaultCapabilities covers the object-style operations the gate exposes.
var DefaultCapabilities = map[string]Capability{
	"get_object":    {Action: "read", ResourceArg: "bucket"},
	"list_objects":  {Action: "list", ResourceArg: "bucket"},
	"put_object":    {Action: "write", ResourceArg: "bucket"},
	"delete_object": {Action: "write", ResourceArg: "bucket"},
}

// Decision is the outcome of one authorization check. Decisions are produced
// per call and never cached across calls: resource names vary per call.
type Decision struct {
	// Allowed reports whether the operation may proceed.
	Allowed bool

	// Session is the narrowed access session, set only on claims-backed
	// allows. A nil session on an allow means capability fallback.
	Session *AccessSession

	// Reason explains a denial (or names the fallback). Empty on a
	// claims-backed allow.
	Reason string
}

// RoleAssumer derives a narrowed session by assuming a role constrained to
// the given resources.
type RoleAssumer interface {
	// Assume returns a session for the role, scoped to resources.
	Assume(ctx context.Context, role string, resources []string) (*AccessSession, error)
}

// localAssumer builds narrowed sessions without an external broker; the
// session carries the role name and scope only.
type localAssumer struct {
	ttl time.Duration
}

func (a localAssumer) Assume(_ context.Context, role string, resources []string) (*AccessSession, error) {
	return &AccessSession{
		AssumedRole: role,
		Resources:   resources,
		ExpiresAt:   time.Now().Add(a.ttl),
	}, nil
}

// EngineConfig configures the authorization engine.
type EngineConfig struct {
	// Capabilities maps operation names to required capabilities.
	// Default: DefaultCapabilities.
	Capabilities map[string]Capability

	// Strict converts "no usable claims" into an explicit denial instead
	// of a silent fallback to capability-based auth.
	Strict bool

	// Assumer derives narrowed sessions from claim-set roles.
	// Default: a local assumer with a 15 minute session TTL.
	Assumer RoleAssumer
}

// Engine decides whether a claim set permits a requested operation on a named
// resource and, on allow, derives a session scoped to exactly that resource.
type Engine struct {
	config EngineConfig
}

// NewEngine creates an authorization engine.
func NewEngine(config EngineConfig) *Engine {
	if config.Capabilities == nil {
		config.Capabilities = DefaultCapabilities
	}
	if config.Assumer == nil {
		config.Assumer = localAssumer{ttl: 15 * time.Minute}
	}
	return &Engine{config: config}
}

// Capabilities returns the operation-to-capability table the engine uses.
// The returned map is read-only at runtime.
func (e *Engine) Capabilities() map[string]Capability {
	return e.config.Capabilities
}

// Authorize decides allow/deny for one call.
//
// A nil claim set means no usable claims-based strategy was available: in
// strict mode that is an explicit denial; otherwise the decision allows with
// a nil session, signalling fallback to capability-based auth.
func (e *Engine) Authorize(ctx context.Context, claims *ClaimSet, operation string, args map[string]any) Decision {
	if claims == nil {
		if e.config.Strict {
			return Decision{Allowed: false, Reason: ReasonClaimsRequired}
		}
		return Decision{Allowed: true, Reason: ReasonCapabilityFallback}
	}

	capability, ok := e.config.Capabilities[operation]
	if !ok {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("%s: %q", ReasonUnknownOperation, operation),
		}
	}

	if !claims.HasPermission(capability.Action) {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("%s: %q not granted to subject %q", ReasonMissingPermission, capability.Action, claims.Subject),
		}
	}

	resource, _ := args[capability.ResourceArg].(string)
	if resource == "" {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("%s: operation %q requires argument %q", ReasonResourceNotAllowed, operation, capability.ResourceArg),
		}
	}
	if !claims.HasResource(resource) {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("%s: %q is outside the subject's allow-list", ReasonResourceNotAllowed, resource),
		}
	}

	session, err := e.narrowSession(ctx, claims, resource)
	if err != nil {
		return Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("session narrowing failed: %v", err),
		}
	}
	return Decision{Allowed: true, Session: session}
}

// narrowSession derives a session constrained to exactly the referenced
// resource: by assuming the claim set's role when present, else by attaching
// temporary credentials carried in the claim-set session metadata.
func (e *Engine) narrowSession(ctx context.Context, claims *ClaimSet, resource string) (*AccessSession, error) {
	scope := []string{resource}

	if claims.AssumableRole != "" {
		session, err := e.config.Assumer.Assume(ctx, claims.AssumableRole, scope)
		if err != nil {
			return nil, err
		}
		session.Principal = claims.Subject
		return session, nil
	}

	session := &AccessSession{
		Principal: claims.Subject,
		Resources: scope,
		ExpiresAt: claims.ExpiresAt,
	}
	if meta := claims.SessionMetadata(); meta != nil {
		session.Credentials = credentialsFromMetadata(meta)
	}
	return session, nil
}

func credentialsFromMetadata(meta map[string]any) Credentials {
	get := func(key string) string {
		s, _ := meta[key].(string)
		return s
	}
	return Credentials{
		AccessKeyID:     get("access_key_id"),
		SecretAccessKey: get("secret_access_key"),
		SessionToken:    get("session_token"),
	}
}
