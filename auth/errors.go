package auth

import "errors"

// Sentinel errors for authentication and authorization.
var (
	// Credential discovery and decoding errors
	ErrAuthenticationRequired = errors.New("auth: authentication required")
	ErrInvalidCredential      = errors.New("auth: invalid credential")
	ErrCredentialExpired      = errors.New("auth: credential expired")
	ErrUntrustedIssuer        = errors.New("auth: untrusted issuer")
	ErrUntrustedAudience      = errors.New("auth: untrusted audience")
	ErrKeyNotFound            = errors.New("auth: signing key not found")

	// Strategy errors
	ErrNoSession = errors.New("auth: no access session available")

	// Authorization errors
	ErrForbidden = errors.New("auth: access denied")

	// Configuration errors, raised at construction time rather than first use
	ErrConfiguration = errors.New("auth: invalid trust configuration")
)
