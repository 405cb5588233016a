package auth

import "context"

// Auth schemes recognized at the transport boundary.
const (
	SchemeBearer     = "bearer"
	SchemeCapability = "capability"
)

// RuntimeAuthState is the immutable per-call authentication snapshot created
// once by the transport boundary. It is never mutated after construction; if
// claims need re-derivation the state is replaced wholesale.
type RuntimeAuthState struct {
	// Scheme is the authentication scheme in effect.
	Scheme string

	// Credential is the raw bearer credential, when one was presented.
	Credential string

	// Claims is the decoded claim set. Nil means unverified.
	Claims *ClaimSet

	// Extra carries free-form state such as a previously resolved session
	// or session metadata.
	Extra map[string]any
}

// WithClaims returns a copy of the state with the claim set replaced.
// The receiver is left untouched.
func (s *RuntimeAuthState) WithClaims(claims *ClaimSet) *RuntimeAuthState {
	next := *s
	next.Claims = claims
	return &next
}

// Context keys for auth-related values.
type contextKey int

const (
	stateKey contextKey = iota
)

// WithState returns a new context carrying the given auth state.
func WithState(ctx context.Context, state *RuntimeAuthState) context.Context {
	return context.WithValue(ctx, stateKey, state)
}

// StateFromContext retrieves the auth state from the context.
// Returns nil if no state is present.
func StateFromContext(ctx context.Context) *RuntimeAuthState {
	state, _ := ctx.Value(stateKey).(*RuntimeAuthState)
	return state
}

// CredentialFromContext retrieves the raw credential attached to the active
// call, or empty string if none.
func CredentialFromContext(ctx context.Context) string {
	state := StateFromContext(ctx)
	if state == nil {
		return ""
	}
	return state.Credential
}
