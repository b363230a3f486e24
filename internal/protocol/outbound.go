package protocol

import "encoding/json"

type SessionCreated struct {
	Type        string `json:"type"`
	SessionID   string `json:"sessionId"`
	DisplayName string `json:"displayName"`
	Success     bool   `json:"success"`
}

func NewSessionCreated(sessionID, displayName string) SessionCreated {
	return SessionCreated{Type: EventSessionCreated, SessionID: sessionID, DisplayName: displayName, Success: true}
}

type SessionJoined struct {
	Type        string `json:"type"`
	SessionID   string `json:"sessionId"`
	DisplayName string `json:"displayName"`
	UserName    string `json:"userName"`
	Success     bool   `json:"success"`
}

func NewSessionJoined(sessionID, displayName, userName string) SessionJoined {
	return SessionJoined{Type: EventSessionJoined, SessionID: sessionID, DisplayName: displayName, UserName: userName, Success: true}
}

type SessionJoinFailed struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	Error     string `json:"error"`
}

func NewSessionJoinFailed(sessionID, reason string) SessionJoinFailed {
	return SessionJoinFailed{Type: EventSessionJoinFailed, SessionID: sessionID, Error: reason}
}

type MemberJoined struct {
	Type        string `json:"type"`
	UserName    string `json:"userName"`
	SessionID   string `json:"sessionId"`
	DisplayName string `json:"displayName"`
}

func NewMemberJoined(userName, sessionID, displayName string) MemberJoined {
	return MemberJoined{Type: EventMemberJoined, UserName: userName, SessionID: sessionID, DisplayName: displayName}
}

type MemberLeft struct {
	Type      string `json:"type"`
	UserName  string `json:"userName"`
	SessionID string `json:"sessionId"`
}

func NewMemberLeft(userName, sessionID string) MemberLeft {
	return MemberLeft{Type: EventMemberLeft, UserName: userName, SessionID: sessionID}
}

type DirectoryEntry struct {
	SessionID   string `json:"sessionId"`
	DisplayName string `json:"displayName"`
	MemberCount int    `json:"memberCount"`
}

type DirectoryUpdated struct {
	Type     string           `json:"type"`
	Sessions []DirectoryEntry `json:"sessions"`
}

func NewDirectoryUpdated(entries []DirectoryEntry) DirectoryUpdated {
	if entries == nil {
		entries = []DirectoryEntry{}
	}
	return DirectoryUpdated{Type: EventDirectoryUpdated, Sessions: entries}
}

type StrokeRelayed struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func NewStrokeRelayed(payload json.RawMessage) StrokeRelayed {
	return StrokeRelayed{Type: EventStrokeRelayed, Payload: payload}
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func NewError(reason string) ErrorEvent {
	return ErrorEvent{Type: EventError, Error: reason}
}

type Pong struct {
	Type string `json:"type"`
}

func NewPong() Pong {
	return Pong{Type: EventPong}
}

// Encode marshals an outbound event for the wire.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
