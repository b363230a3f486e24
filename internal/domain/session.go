// Package domain contains entity without logic, just meta-data
package domain

import "time"

type (
	SessionName string
	SessionID   string
)

const MaxSessionNameLen = 36

// Session is a transient collaboration room. All fields are immutable
// after creation; membership lives in core, not here.
type Session struct {
	ID        SessionID   `json:"id"`
	Name      SessionName `json:"name"`
	CreatedAt time.Time   `json:"createdAt"`
	CreatedBy string      `json:"-"`
}
