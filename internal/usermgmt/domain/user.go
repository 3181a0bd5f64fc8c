package domain

import "time"

type User struct {
	ID              int64
	Username        string
	Email           string
	PasswordHash    string // bcrypt encoded
	RecoveryEmail   string
	PhoneNumber     string
	ProfileImgPath  string
	Country         string
	State           string
	ZipCode         string
	RoleID          int64 // Foreign key to roles table
	AccountStatusID int64 // Foreign key to account_statuses table
	Profile         Profile
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserFilterKey is the closed set of properties users can be queried by.
type UserFilterKey string

const (
	FilterUsername        UserFilterKey = "username"
	FilterEmail           UserFilterKey = "email"
	FilterUserID          UserFilterKey = "userid"
	FilterRoleID          UserFilterKey = "roleid"
	FilterAccountStatusID UserFilterKey = "accountstatusid"
)

// UserFilter is a typed predicate over users. Text keys match
// case-insensitively by substring, integer keys by equality.
type UserFilter struct {
	Key  UserFilterKey
	Text string
	ID   int64
}

// IsText reports whether the key filters on a text column.
func (k UserFilterKey) IsText() bool {
	return k == FilterUsername || k == FilterEmail
}

// Valid reports whether k is one of the known filter keys.
func (k UserFilterKey) Valid() bool {
	switch k {
	case FilterUsername, FilterEmail, FilterUserID, FilterRoleID, FilterAccountStatusID:
		return true
	}
	return false
}
