package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// JWKSConfig configures the JWKS key provider.
type JWKSConfig struct {
	// URL is the JWKS endpoint URL.
	URL string

	// CacheTTL is how long fetched keys stay fresh.
	// Default: 1 hour
	CacheTTL time.Duration

	// HTTPClient is the HTTP client used for fetches.
	// If nil, a default client with a 30s timeout is used.
	HTTPClient *http.Client
}

// JWKSKeyProvider retrieves verification keys from a JWKS endpoint, caching
// them for the configured TTL. Concurrent cache misses collapse into a single
// upstream fetch.
type JWKSKeyProvider struct {
	config JWKSConfig

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	sf        singleflight.Group
}

// NewJWKSKeyProvider creates a new JWKS key provider.
func NewJWKSKeyProvider(config JWKSConfig) *JWKSKeyProvider {
	if config.CacheTTL <= 0 {
		config.CacheTTL = time.Hour
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &JWKSKeyProvider{
		config: config,
		keys:   make(map[string]*rsa.PublicKey),
	}
}

// GetKey returns the key for the given key ID. An empty keyID matches the
// sole key when exactly one is cached.
func (p *JWKSKeyProvider) GetKey(ctx context.Context, keyID string) (any, error) {
	p.mu.RLock()
	fresh := time.Since(p.fetchedAt) < p.config.CacheTTL
	key := p.lookupLocked(keyID)
	p.mu.RUnlock()

	if fresh && key != nil {
		return key, nil
	}

	_, err, _ := p.sf.Do("refresh", func() (any, error) {
		return nil, p.refresh(ctx)
	})
	if err != nil {
		// Stale keys beat no keys when the endpoint is unreachable.
		if key != nil {
			return key, nil
		}
		return nil, err
	}

	p.mu.RLock()
	key = p.lookupLocked(keyID)
	p.mu.RUnlock()

	if key == nil {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

// lookupLocked finds a key by ID. Caller must hold at least RLock.
func (p *JWKSKeyProvider) lookupLocked(keyID string) *rsa.PublicKey {
	if keyID == "" {
		if len(p.keys) == 1 {
			for _, key := range p.keys {
				return key
			}
		}
		return nil
	}
	return p.keys[keyID]
}

func (p *JWKSKeyProvider) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.URL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := p.config.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch JWKS: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch JWKS: unexpected status %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey)
	for _, jwk := range doc.Keys {
		if jwk.Kty != "RSA" {
			continue
		}
		pubKey, err := parseRSAPublicKey(jwk)
		if err != nil {
			continue // skip unusable keys, keep the rest
		}
		keys[jwk.Kid] = pubKey
	}

	p.mu.Lock()
	p.keys = keys
	p.fetchedAt = time.Now()
	p.mu.Unlock()

	return nil
}

// jwksDocument is the JWKS endpoint response format.
type jwksDocument struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func parseRSAPublicKey(jwk jwkKey) (*rsa.PublicKey, error) {
	if jwk.N == "" || jwk.E == "" {
		return nil, fmt.Errorf("missing modulus or exponent")
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("decode n: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("decode e: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}

// Ensure JWKSKeyProvider implements KeyProvider
var _ KeyProvider = (*JWKSKeyProvider)(nil)
