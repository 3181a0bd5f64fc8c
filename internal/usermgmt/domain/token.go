package domain

import "time"

// AccessToken is an issued bearer token. There is no refresh token; a new
// one is issued on every login, update and password reset.
type AccessToken struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
}
