package models

import "time"

// User is the authenticated identity returned by the login endpoint. The
// server owns the record; this is the client-side projection kept alongside
// the bearer token.
type User struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"emailId"`
	UserType    string `json:"userType"`
	CountryCode string `json:"countryCode"`
}

// Admin reports whether the user carries the admin type code. The upstream
// uses single-letter codes on the wire ("A" admin, "U" regular); older
// responses spell them out.
func (u User) Admin() bool {
	return u.UserType == "A" || u.UserType == "ADMIN"
}

// Credentials is the durable session payload: the bearer token and the user it
// was issued to. It is the only authentication state that survives a restart.
type Credentials struct {
	Token    string    `json:"token"`
	User     User      `json:"user"`
	IssuedAt time.Time `json:"issued_at"`
}

// State is the observable lifecycle of an AuthSession. There is no partial
// state: a session is either logged out, mid-handshake, or logged in.
type State string

const (
	StateLoggedOut      State = "logged_out"
	StateAuthenticating State = "authenticating"
	StateLoggedIn       State = "logged_in"
)

// AuthStatus classifies the outcome of a login attempt. Expected failures are
// values, not errors, so the caller can branch on them without unwrapping.
type AuthStatus string

const (
	// StatusAuthenticated means the credential was accepted and the session
	// is established.
	StatusAuthenticated AuthStatus = "authenticated"
	// StatusInvalidCredentials means the server rejected the credential.
	// Retrying with the same password will not help.
	StatusInvalidCredentials AuthStatus = "invalid_credentials"
	// StatusNetworkError means the handshake could not complete: the nonce
	// fetch or the submission failed in transit. The caller may retry.
	StatusNetworkError AuthStatus = "network_error"
)

// AuthResult is the typed outcome of Service.Login.
type AuthResult struct {
	Status  AuthStatus
	Message string
	// Credentials is set only when Status is StatusAuthenticated.
	Credentials *Credentials
}

// LoginSubmission is the wire request for the login endpoint. Credential is
// the hex digest produced by the credential package, never the plaintext.
type LoginSubmission struct {
	Email       string `json:"emailId"`
	Credential  string `json:"password"`
	CountryCode string `json:"countryCode"`
}
