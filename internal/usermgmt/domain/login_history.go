package domain

import "time"

// LoginHistory is an append-only audit row for a single login attempt.
type LoginHistory struct {
	ID              int64
	UserID          int64
	LoginTimestamp  time.Time
	IPAddress       string
	Device          string
	FailedAttempts  int // Failed attempts earlier the same UTC day
	LoginSuccessful bool
}

// LoginContext describes where a login attempt came from.
type LoginContext struct {
	IPAddress string
	Device    string
}
