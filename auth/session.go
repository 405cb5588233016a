package auth

import "time"

// Credentials are raw access credentials carried by a session. The string
// form is always redacted so credentials cannot leak through logs or error
// bodies by accident.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// IsZero reports whether no credentials are present.
func (c Credentials) IsZero() bool {
	return c.AccessKeyID == "" && c.SecretAccessKey == "" && c.SessionToken == ""
}

// String implements fmt.Stringer with full redaction.
func (c Credentials) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer with full redaction, so %#v is safe too.
func (c Credentials) GoString() string {
	return "auth.Credentials{[REDACTED]}"
}

// AccessSession is a usable access session resolved by a strategy or narrowed
// by the authorization engine. A narrowed session never has broader reach
// than the claim set it was derived from.
type AccessSession struct {
	// Principal is the identity the session acts as.
	Principal string

	// Account is the owning account, when known.
	Account string

	// AssumedRole is the role the session was narrowed through, if any.
	AssumedRole string

	// Resources is the scope of the session: the named resources it may
	// reach. Empty means the session carries its holder's ambient scope.
	Resources []string

	// Credentials are the raw credentials backing the session.
	Credentials Credentials

	// ExpiresAt is when the session stops being usable. Zero means the
	// session follows its backing credentials' lifetime.
	ExpiresAt time.Time
}

// AllowsResource reports whether the session scope covers the named resource.
// A session without an explicit scope allows nothing here; narrowed sessions
// always carry their scope.
func (s *AccessSession) AllowsResource(resource string) bool {
	for _, r := range s.Resources {
		if r == resource {
			return true
		}
	}
	return false
}

// Expired reports whether the session expiry has elapsed at t.
func (s *AccessSession) Expired(t time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !t.Before(s.ExpiresAt)
}
