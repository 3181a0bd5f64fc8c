package domain

import "time"

// Seeded account status ids. Admins may set any of them; the lifecycle
// operations only drive Active, LoggedOut and Deactivated.
const (
	StatusInitialState int64 = 1
	StatusRegistered   int64 = 2
	StatusActive       int64 = 3
	StatusLoggedIn     int64 = 4
	StatusInactive     int64 = 5
	StatusUnregistered int64 = 6
	StatusLoggedOut    int64 = 7
	StatusDeactivated  int64 = 8
	StatusBanned       int64 = 9
	StatusFinalState   int64 = 10
)

type AccountStatus struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
