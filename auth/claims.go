package auth

import (
	"fmt"
	"sort"
	"time"
)

// Default claim keys recognized by the claims-based strategy. A decoded
// credential carrying any key outside this set is rejected for that strategy
// (fail closed).
var DefaultAllowedClaimKeys = []string{
	"sub",
	"exp",
	"iat",
	"iss",
	"aud",
	"tenant",
	"permissions",
	"resources",
	"roles",
	"role",
	"session",
}

// ClaimSet is the decoded, verified attribute set carried by a bearer
// credential. It is produced only by Decoder.Decode and treated as
// authoritative afterwards; the system never re-derives trust from it
// without re-verification.
type ClaimSet struct {
	// Subject is the identity the credential was issued to.
	Subject string

	// TenantID is the tenant the subject belongs to (may be empty).
	TenantID string

	// Permissions are capability names granted to the subject.
	Permissions []string

	// Resources are the named resources the subject may reach.
	Resources []string

	// Roles are role names carried by the credential.
	Roles []string

	// AssumableRole is the single role to assume for narrowed sessions,
	// when the issuer provides one.
	AssumableRole string

	// ExpiresAt is the mandatory credential expiry.
	ExpiresAt time.Time

	// IssuedAt is when the credential was issued (may be zero).
	IssuedAt time.Time

	// Keys are the raw claim names observed at decode time, sorted.
	// Used for the allow-list integrity check.
	Keys []string

	// Extra holds unrecognized-but-allowed claim values, such as session
	// metadata or temporary credentials carried under "session".
	Extra map[string]any
}

// HasPermission reports whether the claim set grants the named capability.
func (c *ClaimSet) HasPermission(perm string) bool {
	for _, p := range c.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// HasResource reports whether the named resource is in the allow-list.
func (c *ClaimSet) HasResource(resource string) bool {
	for _, r := range c.Resources {
		if r == resource {
			return true
		}
	}
	return false
}

// IsExpired reports whether the claim set's expiry has elapsed at t.
func (c *ClaimSet) IsExpired(t time.Time) bool {
	if c.ExpiresAt.IsZero() {
		// A claim set without expiry never comes out of the decoder;
		// treat it as expired rather than open-ended.
		return true
	}
	return !t.Before(c.ExpiresAt)
}

// SessionMetadata returns the "session" extra as a map, if present.
func (c *ClaimSet) SessionMetadata() map[string]any {
	if c.Extra == nil {
		return nil
	}
	m, _ := c.Extra["session"].(map[string]any)
	return m
}

// CheckAllowedKeys verifies that every raw claim key in the set is within the
// allow-list. Unexpected keys invalidate the whole set for the strategy that
// enforces the list.
func CheckAllowedKeys(keys []string, allowed []string) error {
	allowedSet := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		allowedSet[k] = true
	}

	for _, k := range keys {
		if !allowedSet[k] {
			return fmt.Errorf("%w: unexpected claim %q", ErrInvalidCredential, k)
		}
	}
	return nil
}

// sortedKeys returns the sorted key set of a raw claim map.
func sortedKeys(claims map[string]any) []string {
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
