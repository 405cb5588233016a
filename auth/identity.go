package auth

// Identity describes the resolved caller behind an authentication strategy.
type Identity struct {
	// UserID is the unique identifier for the caller.
	UserID string

	// AccountID is the account the caller operates under (capability mode).
	AccountID string

	// Email is the caller's email, when known (interactive logins).
	Email string

	// Name is a display name, when known.
	Name string
}

// IsZero reports whether no identity was resolved.
func (id Identity) IsZero() bool {
	return id.UserID == "" && id.AccountID == "" && id.Email == ""
}
