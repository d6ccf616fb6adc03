package models

// AuthState is the session's position in the sign-in state machine:
//
//	loading → unauthenticated
//	loading → authenticated-unlinked → authenticated-linked
//	any authenticated state → unauthenticated (logout)
type AuthState string

const (
	AuthLoading         AuthState = "loading"
	AuthUnauthenticated AuthState = "unauthenticated"
	AuthUnlinked        AuthState = "authenticated-unlinked"
	AuthLinked          AuthState = "authenticated-linked"
)

func (s AuthState) Authenticated() bool {
	return s == AuthUnlinked || s == AuthLinked
}

// User is the profile returned by the identity provider.
type User struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Subject string `json:"sub"`
}

// SessionState is the read-only view of the auth session that handlers use.
type SessionState struct {
	State   AuthState
	User    *User
	StoreID string
}

type Tokens struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
}
