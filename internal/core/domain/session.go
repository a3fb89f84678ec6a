package domain

import "errors"

var ErrAuthFailed = errors.New("authentication failed")

// Credentials are what the operator types into the login view.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is the authenticated state of the console. A session without an
// access token is not authenticated. An empty RefreshToken means none was issued.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         User   `json:"user"`
}

// Authenticated reports whether s carries a bearer credential.
func (s *Session) Authenticated() bool {
	return s != nil && s.AccessToken != ""
}
