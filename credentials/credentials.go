package credentials

// Credential is the access/refresh token pair issued at login or registration.
// Both tokens are opaque bearer strings; the client never inspects their
// contents.
type Credential struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Store holds the single Credential for the current session. Implementations
// must treat the pair as one unit: Set replaces both tokens together and Get
// never returns an access token from one session alongside a refresh token
// from another.
type Store interface {
	// Get returns the stored Credential, or nil when none exists.
	Get() (*Credential, error)

	// Set overwrites the stored Credential with the given pair.
	Set(cred Credential) error

	// Clear removes both tokens.
	Clear() error
}
