package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DecisionKeyer generates deterministic cache keys for permission probes.
//
// Contract:
// - Determinism: same inputs must produce the same key.
// - Concurrency: safe for concurrent use.
type DecisionKeyer struct{}

// NewDecisionKeyer creates a decision keyer.
func NewDecisionKeyer() *DecisionKeyer {
	return &DecisionKeyer{}
}

// Key generates a cache key for one permission probe.
// Format: perm:<hash> where hash covers (principal, operation, resource);
// the raw tuple never appears in the key so keys stay log-safe.
func (k *DecisionKeyer) Key(principal, operation, resource string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\x00%s\x00%s", principal, operation, resource))
	return "perm:" + hex.EncodeToString(sum[:8])
}
