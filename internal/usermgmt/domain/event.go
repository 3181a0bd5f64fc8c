package domain

import "time"

type EventType string

const (
	EventUserRegistered    EventType = "user.registered"
	EventUserLoggedIn      EventType = "user.logged_in"
	EventUserLoggedOut     EventType = "user.logged_out"
	EventUserUpdated       EventType = "user.updated"
	EventUserDeactivated   EventType = "user.deactivated"
	EventUserRemoved       EventType = "user.removed"
	EventUserStatusChanged EventType = "user.status_changed"
	EventUserRoleChanged   EventType = "user.role_changed"
	EventPasswordReset     EventType = "user.password_reset"
	EventCodeSent          EventType = "verification.code_sent"
	EventCodeValidated     EventType = "verification.code_validated"
	EventEmailVerified     EventType = "verification.email_verified"
)

// AdminAudience is the group every lifecycle event is addressed to.
const AdminAudience = "Admins"

// Event is a lifecycle notification addressed to the admin audience.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Audience   string    `json:"audience"`
	UserID     int64     `json:"userId,omitempty"`
	Email      string    `json:"email,omitempty"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Channel names the client side handler an event is pushed to.
func (e Event) Channel() string {
	switch e.Type {
	case EventCodeSent, EventCodeValidated, EventEmailVerified:
		return "ReceiveNotification"
	default:
		return "ReceiveUserNotification"
	}
}
