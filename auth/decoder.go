package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/toolgate/secret"
)

// DecoderConfig configures the claims decoder.
type DecoderConfig struct {
	// Secret is the shared HMAC secret used to verify credentials.
	// Exactly one of Secret or JWKSURL must be set.
	Secret string

	// JWKSURL is a key-reference alternative to Secret: signing keys are
	// fetched from this JWKS endpoint instead of a local secret.
	JWKSURL string

	// Issuer is the expected iss claim. Empty disables the check.
	Issuer string

	// Audience is the expected aud claim. Empty disables the check.
	Audience string

	// TenantClaim is the claim carrying the tenant id.
	// Default: "tenant"
	TenantClaim string
}

// ResolveDecoderConfig resolves secret references in the trust
// configuration. Secret and JWKSURL may be literal values, strict ${VAR}
// expansions, or secretref:<provider>:<ref> references.
func ResolveDecoderConfig(ctx context.Context, config DecoderConfig, resolver *secret.Resolver) (DecoderConfig, error) {
	resolved, err := resolver.ResolveValue(ctx, config.Secret)
	if err != nil {
		return DecoderConfig{}, fmt.Errorf("%w: resolve shared secret: %v", ErrConfiguration, err)
	}
	config.Secret = resolved

	url, err := resolver.ResolveValue(ctx, config.JWKSURL)
	if err != nil {
		return DecoderConfig{}, fmt.Errorf("%w: resolve JWKS URL: %v", ErrConfiguration, err)
	}
	config.JWKSURL = url
	return config, nil
}

// KeyProvider retrieves verification keys for credential decoding.
type KeyProvider interface {
	// GetKey returns the key for the given key ID.
	GetKey(ctx context.Context, keyID string) (any, error)
}

// StaticKeyProvider provides a fixed shared secret.
type StaticKeyProvider struct {
	key []byte
}

// NewStaticKeyProvider creates a static key provider.
func NewStaticKeyProvider(key []byte) *StaticKeyProvider {
	return &StaticKeyProvider{key: key}
}

// GetKey returns the static key.
func (p *StaticKeyProvider) GetKey(_ context.Context, _ string) (any, error) {
	return p.key, nil
}

// Decoder verifies a bearer credential and decodes it into a ClaimSet.
// It is stateless: decoding is a pure function of the credential and the
// trust configuration.
type Decoder struct {
	config DecoderConfig
	keys   KeyProvider
	parser *jwt.Parser
}

// NewDecoder creates a decoder from trust configuration. A configuration
// without a shared secret or key reference is rejected here, not deferred
// to the first decode.
func NewDecoder(config DecoderConfig) (*Decoder, error) {
	if config.Secret == "" && config.JWKSURL == "" {
		return nil, fmt.Errorf("%w: shared secret or JWKS URL is required", ErrConfiguration)
	}
	if config.Secret != "" && config.JWKSURL != "" {
		return nil, fmt.Errorf("%w: shared secret and JWKS URL are mutually exclusive", ErrConfiguration)
	}
	if config.TenantClaim == "" {
		config.TenantClaim = "tenant"
	}

	var keys KeyProvider
	if config.Secret != "" {
		keys = NewStaticKeyProvider([]byte(config.Secret))
	} else {
		keys = NewJWKSKeyProvider(JWKSConfig{URL: config.JWKSURL})
	}

	return &Decoder{
		config: config,
		keys:   keys,
		// exp is mandatory: a credential lacking it is malformed,
		// not open-ended.
		parser: jwt.NewParser(jwt.WithExpirationRequired()),
	}, nil
}

// Decode verifies the credential and returns its claim set.
// Failure kinds: ErrInvalidCredential (bad signature or shape),
// ErrCredentialExpired, ErrUntrustedIssuer, ErrUntrustedAudience.
func (d *Decoder) Decode(ctx context.Context, credential string) (*ClaimSet, error) {
	token, err := d.parser.Parse(credential, func(token *jwt.Token) (any, error) {
		kid := ""
		if kidVal, ok := token.Header["kid"].(string); ok {
			kid = kidVal
		}
		return d.keys.GetKey(ctx, kid)
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrCredentialExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !token.Valid {
		return nil, ErrInvalidCredential
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: claims are not a map", ErrInvalidCredential)
	}

	if d.config.Issuer != "" {
		if iss, ok := claims["iss"].(string); !ok || iss != d.config.Issuer {
			return nil, ErrUntrustedIssuer
		}
	}
	if d.config.Audience != "" {
		if !containsAudience(audienceValues(claims), d.config.Audience) {
			return nil, ErrUntrustedAudience
		}
	}

	return d.buildClaimSet(claims), nil
}

func (d *Decoder) buildClaimSet(claims jwt.MapClaims) *ClaimSet {
	cs := &ClaimSet{
		Keys:  sortedKeys(claims),
		Extra: make(map[string]any),
	}

	if sub, ok := claims["sub"].(string); ok {
		cs.Subject = sub
	}
	if tenant, ok := claims[d.config.TenantClaim].(string); ok {
		cs.TenantID = tenant
	}
	cs.Permissions = stringSlice(claims["permissions"])
	cs.Resources = stringSlice(claims["resources"])
	cs.Roles = stringSlice(claims["roles"])
	if role, ok := claims["role"].(string); ok {
		cs.AssumableRole = role
	}

	if exp, ok := claims["exp"].(float64); ok {
		cs.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if iat, ok := claims["iat"].(float64); ok {
		cs.IssuedAt = time.Unix(int64(iat), 0)
	}

	recognized := map[string]bool{
		"sub": true, "exp": true, "iat": true, "iss": true, "aud": true,
		"permissions": true, "resources": true, "roles": true, "role": true,
		d.config.TenantClaim: true,
	}
	for k, v := range claims {
		if !recognized[k] {
			cs.Extra[k] = v
		}
	}

	return cs
}

func audienceValues(claims jwt.MapClaims) []string {
	switch v := claims["aud"].(type) {
	case string:
		return []string{v}
	case []any:
		result := make([]string, 0, len(v))
		for _, a := range v {
			if s, ok := a.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}

func containsAudience(audiences []string, target string) bool {
	for _, aud := range audiences {
		if aud == target {
			return true
		}
	}
	return false
}

// stringSlice coerces a raw claim value into a string slice.
func stringSlice(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		result := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}

// Ensure StaticKeyProvider implements KeyProvider
var _ KeyProvider = (*StaticKeyProvider)(nil)
