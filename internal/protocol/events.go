// Package protocol defines the wire catalogue of the relay: inbound
// requests with required-field validation and outbound event payloads.
// Stroke payloads stay json.RawMessage end to end so they are relayed
// byte-for-byte.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound event types.
const (
	EventCreateSession = "createSession"
	EventJoinSession   = "joinSession"
	EventLeaveSession  = "leaveSession"
	EventSendStroke    = "sendStroke"
	EventListSessions  = "listSessions"
	EventPing          = "ping"
)

// Outbound event types.
const (
	EventSessionCreated    = "sessionCreated"
	EventSessionJoined     = "sessionJoined"
	EventSessionJoinFailed = "sessionJoinFailed"
	EventMemberJoined      = "memberJoined"
	EventMemberLeft        = "memberLeft"
	EventDirectoryUpdated  = "directoryUpdated"
	EventStrokeRelayed     = "strokeRelayed"
	EventError             = "error"
	EventPong              = "pong"
)

// ErrMalformedRequest flags an inbound event missing a required field.
// The operation is aborted at the boundary, no state is mutated.
var ErrMalformedRequest = errors.New("malformed request")

type Envelope struct {
	Type string `json:"type"`
}

// DecodeType extracts the event type from a raw inbound frame.
func DecodeType(data []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("%w: missing type", ErrMalformedRequest)
	}
	return env.Type, nil
}

type CreateSessionRequest struct {
	RequestedName string `json:"requestedName"`
}

func DecodeCreateSession(data []byte) (CreateSessionRequest, error) {
	var p CreateSessionRequest
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if p.RequestedName == "" {
		return p, fmt.Errorf("%w: missing requestedName", ErrMalformedRequest)
	}
	return p, nil
}

type JoinSessionRequest struct {
	SessionID   string `json:"sessionId"`
	DisplayName string `json:"displayName,omitempty"`
}

func DecodeJoinSession(data []byte) (JoinSessionRequest, error) {
	var p JoinSessionRequest
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if p.SessionID == "" {
		return p, fmt.Errorf("%w: missing sessionId", ErrMalformedRequest)
	}
	return p, nil
}

type SendStrokeRequest struct {
	Payload json.RawMessage `json:"payload"`
}

func DecodeSendStroke(data []byte) (SendStrokeRequest, error) {
	var p SendStrokeRequest
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	if len(p.Payload) == 0 || string(p.Payload) == "null" {
		return p, fmt.Errorf("%w: missing payload", ErrMalformedRequest)
	}
	return p, nil
}
