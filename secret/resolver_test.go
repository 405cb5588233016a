package secret

import (
	"context"
	"errors"
	"testing"
)

type staticProvider struct {
	name    string
	secrets map[string]string
	err     error
}

func (p *staticProvider) Name() string { return p.name }

func (p *staticProvider) Resolve(_ context.Context, ref string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.secrets[ref], nil
}

func (p *staticProvider) Close() error { return nil }

func TestParseSecretRef(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		wantProvider string
		wantRef      string
		wantOK       bool
	}{
		{
			name:         "env reference",
			value:        "secretref:env:GATE_SECRET",
			wantProvider: "env",
			wantRef:      "GATE_SECRET",
			wantOK:       true,
		},
		{
			name:         "ref containing colon",
			value:        "secretref:vault:kv/data/gate:key",
			wantProvider: "vault",
			wantRef:      "kv/data/gate:key",
			wantOK:       true,
		},
		{
			name:  "plain value",
			value: "not-a-ref",
		},
		{
			name:  "missing ref part",
			value: "secretref:env:",
		},
		{
			name:  "missing provider",
			value: "secretref::NAME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, ref, ok := ParseSecretRef(tt.value)
			if provider != tt.wantProvider || ref != tt.wantRef || ok != tt.wantOK {
				t.Errorf("ParseSecretRef(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.value, provider, ref, ok, tt.wantProvider, tt.wantRef, tt.wantOK)
			}
		})
	}
}

func TestResolver_ResolveValue(t *testing.T) {
	r := NewResolver(true, &staticProvider{
		name:    "static",
		secrets: map[string]string{"jwt-secret": "s3cr3t"},
	})

	got, err := r.ResolveValue(context.Background(), "secretref:static:jwt-secret")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "s3cr3t" {
		t.Errorf("ResolveValue() = %q, want s3cr3t", got)
	}

	// Plain values pass through.
	got, err = r.ResolveValue(context.Background(), "plain-value")
	if err != nil || got != "plain-value" {
		t.Errorf("ResolveValue(plain) = (%q, %v), want passthrough", got, err)
	}

	// Unregistered provider is an error.
	if _, err := r.ResolveValue(context.Background(), "secretref:vault:x"); err == nil {
		t.Error("ResolveValue() with unregistered provider should fail")
	}

	// Strict mode rejects empty secrets.
	if _, err := r.ResolveValue(context.Background(), "secretref:static:absent"); err == nil {
		t.Error("strict ResolveValue() should reject an empty secret")
	}
}

func TestResolver_ResolveMap(t *testing.T) {
	r := NewResolver(true, &staticProvider{
		name:    "static",
		secrets: map[string]string{"key": "resolved"},
	})

	out, err := r.ResolveMap(context.Background(), map[string]string{
		"secret": "secretref:static:key",
		"plain":  "value",
	})
	if err != nil {
		t.Fatalf("ResolveMap() error = %v", err)
	}
	if out["secret"] != "resolved" || out["plain"] != "value" {
		t.Errorf("ResolveMap() = %v", out)
	}

	failed := NewResolver(true, &staticProvider{name: "static", err: errors.New("backend down")})
	if _, err := failed.ResolveMap(context.Background(), map[string]string{
		"secret": "secretref:static:key",
	}); err == nil {
		t.Error("ResolveMap() should surface provider errors")
	}
}

func TestEnvProvider(t *testing.T) {
	t.Setenv("GATE_TEST_SECRET", "from-env")

	p := NewEnvProvider()
	got, err := p.Resolve(context.Background(), "GATE_TEST_SECRET")
	if err != nil || got != "from-env" {
		t.Errorf("Resolve() = (%q, %v), want from-env", got, err)
	}

	if _, err := p.Resolve(context.Background(), "GATE_TEST_UNSET"); err == nil {
		t.Error("Resolve() of unset variable should fail")
	}
}
