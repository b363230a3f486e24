package core

import "github.com/diggerconnect/relay/internal/domain"

// Frame is a raw outbound payload, already encoded for the wire.
type Frame []byte

// ConnID identifies one transport connection for its whole lifetime.
type ConnID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds domain.Member and its transport endpoint.
// This is what a session stores and fans out to.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to the orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []ConnID
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	Name string `json:"name"`
}

// SessionService is the core-facing API of a session.
// It owns the membership set but never touches transport resources.
type SessionService interface {
	Session() *domain.Session
	MemberCount() int
	MembersSnapshot() []MemberDTO
	Member(id ConnID) (MemberDTO, bool)

	// AddMember reports false when the connection is already a member;
	// the existing record is left untouched.
	AddMember(id ConnID, ms MemberSession) bool
	// RemoveMember reports false when the connection is not a member.
	RemoveMember(id ConnID) (MemberSession, bool)
	Broadcast(from ConnID, data Frame) PublishResult
}

// SessionInfo is one directory row.
type SessionInfo struct {
	ID          domain.SessionID   `json:"sessionId"`
	Name        domain.SessionName `json:"displayName"`
	MemberCount int                `json:"memberCount"`
}
