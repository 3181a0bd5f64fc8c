package domain

import "time"

type VerificationCode struct {
	ID             int64
	Email          string
	Code           string
	ExpirationDate time.Time
	IsUsed         bool
	CreatedAt      time.Time
}

// Expired reports whether the code can no longer be accepted at now.
func (c VerificationCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpirationDate)
}
