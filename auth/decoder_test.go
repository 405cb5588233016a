package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/toolgate/secret"
)

const testSecret = "decoder-test-secret"

// signToken mints an HS256 credential for decoder tests.
func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return signed
}

func futureExp() int64 {
	return time.Now().Add(time.Hour).Unix()
}

func TestNewDecoder_TrustConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		config  DecoderConfig
		wantErr bool
	}{
		{
			name:   "shared secret",
			config: DecoderConfig{Secret: testSecret},
		},
		{
			name:   "JWKS URL",
			config: DecoderConfig{JWKSURL: "https://issuer.example/jwks.json"},
		},
		{
			name:    "no trust source",
			config:  DecoderConfig{},
			wantErr: true,
		},
		{
			name:    "both trust sources",
			config:  DecoderConfig{Secret: testSecret, JWKSURL: "https://issuer.example/jwks.json"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewDecoder() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrConfiguration) {
				t.Errorf("error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestResolveDecoderConfig(t *testing.T) {
	t.Setenv("TOOLGATE_TEST_SECRET", testSecret)
	resolver := secret.NewResolver(true, secret.NewEnvProvider())
	ctx := context.Background()

	tests := []struct {
		name       string
		config     DecoderConfig
		wantSecret string
		wantErr    bool
	}{
		{
			name:       "literal secret passes through",
			config:     DecoderConfig{Secret: testSecret},
			wantSecret: testSecret,
		},
		{
			name:       "env expansion",
			config:     DecoderConfig{Secret: "${TOOLGATE_TEST_SECRET}"},
			wantSecret: testSecret,
		},
		{
			name:       "secretref",
			config:     DecoderConfig{Secret: "secretref:env:TOOLGATE_TEST_SECRET"},
			wantSecret: testSecret,
		},
		{
			name:    "unset variable",
			config:  DecoderConfig{Secret: "secretref:env:TOOLGATE_TEST_MISSING"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := ResolveDecoderConfig(ctx, tt.config, resolver)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveDecoderConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrConfiguration) {
					t.Errorf("error = %v, want ErrConfiguration", err)
				}
				return
			}
			if resolved.Secret != tt.wantSecret {
				t.Errorf("Secret = %q, want %q", resolved.Secret, tt.wantSecret)
			}
		})
	}
}

func TestDecoder_Decode(t *testing.T) {
	decoder, err := NewDecoder(DecoderConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}

	credential := signToken(t, testSecret, jwt.MapClaims{
		"sub":         "user-1",
		"exp":         futureExp(),
		"tenant":      "acme",
		"permissions": []string{"read", "write"},
		"resources":   []string{"bucket-a"},
		"role":        "reader",
	})

	claims, err := decoder.Decode(context.Background(), credential)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("Subject = %q, want user-1", claims.Subject)
	}
	if claims.TenantID != "acme" {
		t.Errorf("TenantID = %q, want acme", claims.TenantID)
	}
	if !claims.HasPermission("write") {
		t.Error("missing permission write")
	}
	if !claims.HasResource("bucket-a") {
		t.Error("missing resource bucket-a")
	}
	if claims.AssumableRole != "reader" {
		t.Errorf("AssumableRole = %q, want reader", claims.AssumableRole)
	}
	if claims.IsExpired(time.Now()) {
		t.Error("claims unexpectedly expired")
	}
}

func TestDecoder_Decode_Failures(t *testing.T) {
	decoder, err := NewDecoder(DecoderConfig{
		Secret:   testSecret,
		Issuer:   "https://issuer.example",
		Audience: "toolgate",
	})
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}

	tests := []struct {
		name       string
		credential string
		wantErr    error
	}{
		{
			name:       "garbage credential",
			credential: "not-a-token",
			wantErr:    ErrInvalidCredential,
		},
		{
			name: "wrong signature",
			credential: signToken(t, "other-secret", jwt.MapClaims{
				"sub": "user-1", "exp": futureExp(),
				"iss": "https://issuer.example", "aud": "toolgate",
			}),
			wantErr: ErrInvalidCredential,
		},
		{
			name: "expired credential",
			credential: signToken(t, testSecret, jwt.MapClaims{
				"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix(),
				"iss": "https://issuer.example", "aud": "toolgate",
			}),
			wantErr: ErrCredentialExpired,
		},
		{
			name: "missing exp is malformed",
			credential: signToken(t, testSecret, jwt.MapClaims{
				"sub": "user-1",
				"iss": "https://issuer.example", "aud": "toolgate",
			}),
			wantErr: ErrInvalidCredential,
		},
		{
			name: "wrong issuer",
			credential: signToken(t, testSecret, jwt.MapClaims{
				"sub": "user-1", "exp": futureExp(),
				"iss": "https://evil.example", "aud": "toolgate",
			}),
			wantErr: ErrUntrustedIssuer,
		},
		{
			name: "wrong audience",
			credential: signToken(t, testSecret, jwt.MapClaims{
				"sub": "user-1", "exp": futureExp(),
				"iss": "https://issuer.example", "aud": "other-service",
			}),
			wantErr: ErrUntrustedAudience,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decoder.Decode(context.Background(), tt.credential)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecoder_Decode_AudienceList(t *testing.T) {
	decoder, err := NewDecoder(DecoderConfig{Secret: testSecret, Audience: "toolgate"})
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}

	credential := signToken(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": futureExp(),
		"aud": []string{"other", "toolgate"},
	})

	if _, err := decoder.Decode(context.Background(), credential); err != nil {
		t.Errorf("Decode() error = %v, want nil for audience list member", err)
	}
}

func TestDecoder_Decode_SessionExtra(t *testing.T) {
	decoder, err := NewDecoder(DecoderConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}

	credential := signToken(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": futureExp(),
		"session": map[string]any{
			"access_key_id": "AKIA123",
		},
	})

	claims, err := decoder.Decode(context.Background(), credential)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	meta := claims.SessionMetadata()
	if meta == nil || meta["access_key_id"] != "AKIA123" {
		t.Errorf("SessionMetadata() = %v, want access_key_id entry", meta)
	}
}
