package domain

import (
	"errors"
	"time"
)

const MaxMemberNameLen = 36

var ErrNameTooLong = errors.New("display name too long")

// Member represents one participant of a session.
// No transport or lifecycle logic here.
type Member struct {
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
// An empty name is defaulted deterministically from the connection id.
func NewMember(name, connID string) (*Member, error) {
	if name == "" {
		name = GuestName(connID)
	}
	if len(name) > MaxMemberNameLen {
		return nil, ErrNameTooLong
	}
	return &Member{Name: name, JoinedAt: time.Now()}, nil
}

// GuestName derives a stable fallback display name from a connection id.
func GuestName(connID string) string {
	if len(connID) > 8 {
		connID = connID[:8]
	}
	return "guest-" + connID
}
