package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource yields a raw bearer credential from one location.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Token never errors; a miss is ("", false).
type TokenSource interface {
	// Name identifies the source in logs and remediation text.
	Name() string

	// Token returns a credential and true, or ("", false) on a miss.
	Token(ctx context.Context) (string, bool)
}

// ContextSource reads the credential already attached to the active call's
// auth state. This is always the most trusted source.
type ContextSource struct{}

// Name returns "context".
func (ContextSource) Name() string { return "context" }

// Token returns the credential carried by the call context, if any.
func (ContextSource) Token(ctx context.Context) (string, bool) {
	cred := CredentialFromContext(ctx)
	return cred, cred != ""
}

// SessionSource extracts a bearer credential from a locally cached
// interactive session's outgoing headers.
type SessionSource struct {
	// Headers returns the cached session's outgoing headers, or nil when
	// no interactive session is cached.
	Headers func() map[string][]string
}

// Name returns "session".
func (s SessionSource) Name() string { return "session" }

// Token extracts a bearer credential from the cached session headers.
func (s SessionSource) Token(_ context.Context) (string, bool) {
	if s.Headers == nil {
		return "", false
	}
	headers := s.Headers()
	if headers == nil {
		return "", false
	}
	values := headers["Authorization"]
	if len(values) == 0 {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(values[0], "Bearer "))
	if token == values[0] || token == "" {
		return "", false
	}
	return token, true
}

// DevSource mints a short-lived throwaway credential signed with a fixed
// development secret. It participates in discovery only when explicitly
// enabled; it must never be reachable in production deployments.
type DevSource struct {
	// Enabled gates the source. Disabled sources always miss.
	Enabled bool

	// Secret is the fixed development signing secret.
	Secret string

	// Subject is the subject for minted credentials.
	// Default: "dev-user"
	Subject string

	// TTL is the lifetime of minted credentials.
	// Default: 15 minutes
	TTL time.Duration
}

// Name returns "dev".
func (d DevSource) Name() string { return "dev" }

// Token mints a throwaway credential when the source is enabled.
func (d DevSource) Token(_ context.Context) (string, bool) {
	if !d.Enabled || d.Secret == "" {
		return "", false
	}
	subject := d.Subject
	if subject == "" {
		subject = "dev-user"
	}
	ttl := d.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(d.Secret))
	if err != nil {
		return "", false
	}
	return signed, true
}

// Discovery finds a raw bearer credential by walking its sources in order.
// The order is a trust hierarchy: a real credential from the active call or
// a cached session always wins over a generated development credential.
type Discovery struct {
	sources []TokenSource
}

// NewDiscovery creates a discovery chain over the given sources, tried in
// the order supplied.
func NewDiscovery(sources ...TokenSource) *Discovery {
	return &Discovery{sources: sources}
}

// Discover returns the first credential any source yields.
func (d *Discovery) Discover(ctx context.Context) (string, bool) {
	for _, src := range d.sources {
		if token, ok := src.Token(ctx); ok {
			return token, true
		}
	}
	return "", false
}

// DiscoverOrFail returns a credential or ErrAuthenticationRequired with
// remediation guidance naming the sources that were tried.
func (d *Discovery) DiscoverOrFail(ctx context.Context) (string, error) {
	if token, ok := d.Discover(ctx); ok {
		return token, nil
	}

	names := make([]string, 0, len(d.sources))
	for _, src := range d.sources {
		names = append(names, src.Name())
	}
	return "", fmt.Errorf(
		"%w: no bearer credential found (tried sources: %s); pass an Authorization header or establish an interactive session",
		ErrAuthenticationRequired, strings.Join(names, ", "))
}
