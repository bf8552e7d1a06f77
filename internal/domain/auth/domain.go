package auth

import "time"

// Identity is the non-secret snapshot embedded in both tokens of a session.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type EventType string

const (
	EventSignedUp        EventType = "signed_up"
	EventSignedIn        EventType = "signed_in"
	EventSignedOut       EventType = "signed_out"
	EventPasswordChanged EventType = "password_changed"
	EventSessionRotated  EventType = "session_rotated"
)

type Event struct {
	Type      EventType `json:"type"`
	AccountID string    `json:"account_id"`
	Username  string    `json:"username,omitempty"`
	TokenID   string    `json:"token_id,omitempty"`
	At        time.Time `json:"at"`
}
