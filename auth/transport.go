package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jonwraymond/toolgate/observe"
)

// Stable error codes surfaced in transport error bodies.
const (
	CodeAuthenticationRequired = "authentication_required"
	CodeInvalidCredential      = "invalid_credential"
	CodeCredentialExpired      = "credential_expired"
	CodeForbidden              = "forbidden"
)

// TransportConfig configures the bearer-enforcement middleware.
type TransportConfig struct {
	// ExemptPaths are request paths that skip credential enforcement,
	// such as health-check endpoints.
	ExemptPaths []string

	// FallbackCredential is an operator-configured credential substituted
	// when a request carries none. Substitution is logged as a warning.
	// Empty disables the fallback.
	FallbackCredential string

	// Logger receives enforcement warnings. Nil disables logging.
	Logger observe.Logger
}

// RequireBearer is HTTP middleware enforcing an Authorization: Bearer header.
// On success the raw credential is attached to the request context as a
// RuntimeAuthState for downstream discovery; on failure the request is
// rejected with a structured error body and a stable code.
func RequireBearer(config TransportConfig, next http.Handler) http.Handler {
	exempt := make(map[string]bool, len(config.ExemptPaths))
	for _, p := range config.ExemptPaths {
		exempt[p] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if exempt[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		credential := bearerFromHeader(r.Header.Get("Authorization"))
		if credential == "" && config.FallbackCredential != "" {
			credential = config.FallbackCredential
			if config.Logger != nil {
				config.Logger.Warn(r.Context(), "substituting operator fallback credential",
					observe.Field{Key: "path", Value: r.URL.Path})
			}
		}
		if credential == "" {
			WriteError(w, ErrAuthenticationRequired)
			return
		}

		state := &RuntimeAuthState{
			Scheme:     SchemeBearer,
			Credential: credential,
		}
		next.ServeHTTP(w, r.WithContext(WithState(r.Context(), state)))
	})
}

// bearerFromHeader extracts the credential from an Authorization header.
// Returns empty string when the header is absent or not bearer-shaped.
func bearerFromHeader(header string) string {
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return strings.TrimSpace(token)
}

// errorBody is the structured error envelope written at the transport
// boundary. Messages carry remediation guidance but never raw credentials
// or decoded claim values.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// WriteError translates an auth error into a structured response with a
// stable code. Unrecognized errors are treated as denials, not leaked.
func WriteError(w http.ResponseWriter, err error) {
	code, status := classify(err)

	var body errorBody
	body.Error.Code = code
	body.Error.Message = publicMessage(code)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func classify(err error) (code string, status int) {
	switch {
	case errors.Is(err, ErrCredentialExpired):
		return CodeCredentialExpired, http.StatusUnauthorized
	case errors.Is(err, ErrInvalidCredential),
		errors.Is(err, ErrUntrustedIssuer),
		errors.Is(err, ErrUntrustedAudience):
		return CodeInvalidCredential, http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden, http.StatusForbidden
	default:
		return CodeAuthenticationRequired, http.StatusUnauthorized
	}
}

func publicMessage(code string) string {
	switch code {
	case CodeCredentialExpired:
		return "credential expired: obtain a fresh credential and retry"
	case CodeInvalidCredential:
		return "credential rejected: verify the credential and its issuer"
	case CodeForbidden:
		return "operation not permitted for this identity"
	default:
		return "authentication required: pass an Authorization: Bearer header"
	}
}

// DenyError wraps an engine decision into an error carrying the denial
// reason, usable with errors.Is(err, ErrForbidden).
type DenyError struct {
	Operation string
	Reason    string
}

// Error returns the denial message.
func (e *DenyError) Error() string {
	return "auth: operation " + e.Operation + " denied: " + e.Reason
}

// Is reports whether this error matches ErrForbidden.
func (e *DenyError) Is(target error) bool {
	return target == ErrForbidden
}

// Deny converts a denied Decision into a *DenyError. Allowed decisions
// return nil.
func Deny(operation string, decision Decision) error {
	if decision.Allowed {
		return nil
	}
	return &DenyError{Operation: operation, Reason: decision.Reason}
}
