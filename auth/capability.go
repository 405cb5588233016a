package auth

import (
	"context"
	"fmt"
	"sync"
)

// CredentialStore resolves a long-lived account session, typically from an
// interactive login cache or ambient account defaults.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Resolve returns an error when no usable account session exists.
type CredentialStore interface {
	// Resolve returns the account session and its identity.
	Resolve(ctx context.Context) (*AccessSession, Identity, error)
}

// StaticCredentialStore serves a fixed account session. Useful for
// deployments with ambient account defaults and for tests.
type StaticCredentialStore struct {
	Session  AccessSession
	Ident    Identity
	Fail     bool
	FailWith error
}

// Resolve returns the fixed session, or the configured failure.
func (s *StaticCredentialStore) Resolve(_ context.Context) (*AccessSession, Identity, error) {
	if s.Fail {
		err := s.FailWith
		if err == nil {
			err = ErrNoSession
		}
		return nil, Identity{}, err
	}
	session := s.Session
	return &session, s.Ident, nil
}

// CapabilityStrategy authenticates with long-lived account credentials.
// The resolved session is cached for the lifetime of the strategy instance,
// never process-wide: instances are request-scoped and discarded with their
// call.
type CapabilityStrategy struct {
	store CredentialStore

	mu       sync.Mutex
	resolved *AccessSession
	identity Identity
	err      error
	done     bool
}

// NewCapabilityStrategy creates a capability strategy over the given store.
func NewCapabilityStrategy(store CredentialStore) *CapabilityStrategy {
	return &CapabilityStrategy{store: store}
}

// Session resolves the account session, caching the outcome on the instance.
func (s *CapabilityStrategy) Session(ctx context.Context) (*AccessSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.done {
		s.resolved, s.identity, s.err = s.store.Resolve(ctx)
		s.done = true
	}
	if s.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, s.err)
	}
	return s.resolved, nil
}

// IsValid reports whether the account session currently resolves.
// Resolution failures yield false, never an error.
func (s *CapabilityStrategy) IsValid(ctx context.Context) bool {
	_, err := s.Session(ctx)
	return err == nil
}

// Identity returns the resolved identity, resolving the session first if
// needed. A strategy that cannot resolve reports a zero identity.
func (s *CapabilityStrategy) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.done {
		s.resolved, s.identity, s.err = s.store.Resolve(context.Background())
		s.done = true
	}
	if s.err != nil {
		return Identity{}
	}
	return s.identity
}

// Ensure CapabilityStrategy implements Strategy
var _ Strategy = (*CapabilityStrategy)(nil)
