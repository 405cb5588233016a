package auth

import (
	"context"
	"sync"
	"time"
)

// ClaimsStrategy authenticates with per-request bearer claims. It has no
// ambient session: Session always fails, because claims-based auth never
// hands out raw capability sessions. Only the authorization engine may
// derive a session from claims, narrowed per call.
type ClaimsStrategy struct {
	decoder *Decoder
	state   *RuntimeAuthState
	allowed []string

	mu      sync.Mutex
	claims  *ClaimSet
	decoded bool
}

// NewClaimsStrategy creates a claims strategy for one call's auth state.
func NewClaimsStrategy(decoder *Decoder, state *RuntimeAuthState, allowedKeys []string) *ClaimsStrategy {
	if allowedKeys == nil {
		allowedKeys = DefaultAllowedClaimKeys
	}
	return &ClaimsStrategy{
		decoder: decoder,
		state:   state,
		allowed: allowedKeys,
	}
}

// Session always fails with ErrNoSession.
func (s *ClaimsStrategy) Session(_ context.Context) (*AccessSession, error) {
	return nil, ErrNoSession
}

// IsValid reports whether the held claims are usable: present or decodable,
// within the allow-listed key set, with a non-empty subject and an expiry in
// the future. Any parse failure yields false, never an error.
func (s *ClaimsStrategy) IsValid(ctx context.Context) bool {
	claims := s.Claims(ctx)
	if claims == nil {
		return false
	}
	if err := CheckAllowedKeys(claims.Keys, s.allowed); err != nil {
		return false
	}
	if claims.Subject == "" {
		return false
	}
	return !claims.IsExpired(time.Now())
}

// Identity returns the claim subject as the user id.
func (s *ClaimsStrategy) Identity() Identity {
	claims := s.Claims(context.Background())
	if claims == nil {
		return Identity{}
	}
	return Identity{UserID: claims.Subject}
}

// Claims returns the strategy's claim set, decoding the held credential on
// first use. Returns nil when no claims are available.
func (s *ClaimsStrategy) Claims(ctx context.Context) *ClaimSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.decoded {
		return s.claims
	}
	s.decoded = true

	if s.state == nil {
		return nil
	}
	if s.state.Claims != nil {
		s.claims = s.state.Claims
		return s.claims
	}
	if s.state.Credential == "" || s.decoder == nil {
		return nil
	}

	claims, err := s.decoder.Decode(ctx, s.state.Credential)
	if err != nil {
		return nil
	}
	s.claims = claims
	return s.claims
}

// Ensure ClaimsStrategy implements Strategy
var _ Strategy = (*ClaimsStrategy)(nil)
