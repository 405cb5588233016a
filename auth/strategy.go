package auth

import (
	"context"
	"fmt"
)

// Mode selects which authentication strategy a deployment uses. It is read
// once at process start; switching mode never retroactively mutates
// already-issued strategy instances.
type Mode string

const (
	// ModeCapability uses long-lived account credentials.
	ModeCapability Mode = "capability"

	// ModeClaims uses per-request bearer claims.
	ModeClaims Mode = "claims"
)

// Strategy is the shared contract over the two authentication variants.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Session returns a strategy-specific error when unusable;
//   IsValid never returns an error and never panics.
type Strategy interface {
	// Session resolves a usable access session.
	Session(ctx context.Context) (*AccessSession, error)

	// IsValid reports whether the strategy can currently authenticate.
	IsValid(ctx context.Context) bool

	// Identity returns the resolved identity descriptor.
	Identity() Identity
}

// StrategyFactory creates a strategy instance per inbound call. The concrete
// strategy type is fixed by the deployment mode at construction.
type StrategyFactory struct {
	mode    Mode
	store   CredentialStore
	decoder *Decoder
	allowed []string
}

// FactoryOption configures a StrategyFactory.
type FactoryOption func(*StrategyFactory)

// WithCredentialStore sets the account credential store used in capability
// mode.
func WithCredentialStore(store CredentialStore) FactoryOption {
	return func(f *StrategyFactory) { f.store = store }
}

// WithDecoder sets the claims decoder used in claims mode.
func WithDecoder(decoder *Decoder) FactoryOption {
	return func(f *StrategyFactory) { f.decoder = decoder }
}

// WithAllowedClaimKeys overrides the claim-key allow-list for claims mode.
func WithAllowedClaimKeys(keys []string) FactoryOption {
	return func(f *StrategyFactory) { f.allowed = keys }
}

// NewStrategyFactory creates a factory for the given deployment mode.
// The mode's prerequisites are validated here, at startup.
func NewStrategyFactory(mode Mode, opts ...FactoryOption) (*StrategyFactory, error) {
	f := &StrategyFactory{
		mode:    mode,
		allowed: DefaultAllowedClaimKeys,
	}
	for _, opt := range opts {
		opt(f)
	}

	switch mode {
	case ModeCapability:
		if f.store == nil {
			return nil, fmt.Errorf("%w: capability mode requires a credential store", ErrConfiguration)
		}
	case ModeClaims:
		if f.decoder == nil {
			return nil, fmt.Errorf("%w: claims mode requires a decoder", ErrConfiguration)
		}
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrConfiguration, mode)
	}

	return f, nil
}

// Mode returns the deployment mode the factory was built for.
func (f *StrategyFactory) Mode() Mode {
	return f.mode
}

// New creates a strategy for one inbound call from its auth state.
// The returned instance is request-scoped and must not be shared.
func (f *StrategyFactory) New(state *RuntimeAuthState) Strategy {
	switch f.mode {
	case ModeClaims:
		return NewClaimsStrategy(f.decoder, state, f.allowed)
	default:
		return NewCapabilityStrategy(f.store)
	}
}
