package secret

import (
	"context"
	"fmt"
	"os"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret
// values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves secrets from environment variables.
// Reference form: secretref:env:VAR_NAME
type EnvProvider struct{}

// NewEnvProvider creates an environment-backed provider.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// Name returns "env".
func (p *EnvProvider) Name() string { return "env" }

// Resolve reads the named environment variable. An unset variable is an
// error, not an empty secret.
func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	value, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("secret: environment variable %q is not set", ref)
	}
	return value, nil
}

// Close is a no-op for the env provider.
func (p *EnvProvider) Close() error { return nil }

// Ensure EnvProvider implements Provider
var _ Provider = (*EnvProvider)(nil)
