package core

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diggerconnect/relay/internal/domain"
)

type mockSignal struct {
	mu      sync.Mutex
	frames  []Frame
	sendErr error
	closed  bool
}

func (m *mockSignal) TrySend(f Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.frames = append(m.frames, f)
	return nil
}

func (m *mockSignal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockSignal) received() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frames
}

func newTestSession(t *testing.T) SessionService {
	t.Helper()
	return NewSessionService(&domain.Session{
		ID:        "sess-1",
		Name:      "Alpha",
		CreatedAt: time.Now(),
	})
}

func member(name string, sig SignalConnection) MemberSession {
	return NewMemberSession(&domain.Member{Name: name, JoinedAt: time.Now()}, sig)
}

func TestSession_AddMember(t *testing.T) {
	s := newTestSession(t)
	sig := &mockSignal{}

	require.True(t, s.AddMember("c1", member("Amy", sig)))
	assert.Equal(t, 1, s.MemberCount())

	// duplicate identity is a no-op
	assert.False(t, s.AddMember("c1", member("Amy2", sig)))
	assert.Equal(t, 1, s.MemberCount())

	m, ok := s.Member("c1")
	require.True(t, ok)
	assert.Equal(t, "Amy", m.Name)
}

func TestSession_RemoveMember(t *testing.T) {
	s := newTestSession(t)
	s.AddMember("c1", member("Amy", &mockSignal{}))

	ms, ok := s.RemoveMember("c1")
	require.True(t, ok)
	assert.Equal(t, "Amy", ms.Meta().Name)
	assert.Equal(t, 0, s.MemberCount())

	// removing again is a safe no-op
	_, ok = s.RemoveMember("c1")
	assert.False(t, ok)
}

func TestSession_Broadcast(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(s SessionService) map[ConnID]*mockSignal
		from     ConnID
		wantSent int
		wantDrop int
	}{
		{
			name: "excludes sender",
			setup: func(s SessionService) map[ConnID]*mockSignal {
				sigs := map[ConnID]*mockSignal{"a": {}, "b": {}, "c": {}}
				for id, sig := range sigs {
					s.AddMember(id, member(string(id), sig))
				}
				return sigs
			},
			from:     "a",
			wantSent: 2,
		},
		{
			name: "single member room sends nothing",
			setup: func(s SessionService) map[ConnID]*mockSignal {
				sigs := map[ConnID]*mockSignal{"a": {}}
				s.AddMember("a", member("a", sigs["a"]))
				return sigs
			},
			from:     "a",
			wantSent: 0,
		},
		{
			name: "backpressured member is reported dropped",
			setup: func(s SessionService) map[ConnID]*mockSignal {
				sigs := map[ConnID]*mockSignal{"a": {}, "b": {sendErr: errors.New("backpressure")}}
				for id, sig := range sigs {
					s.AddMember(id, member(string(id), sig))
				}
				return sigs
			},
			from:     "a",
			wantSent: 0,
			wantDrop: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			sigs := tt.setup(s)

			res := s.Broadcast(tt.from, Frame("stroke"))

			assert.Equal(t, tt.wantSent, res.SentTo)
			assert.Len(t, res.Dropped, tt.wantDrop)
			assert.Empty(t, sigs[tt.from].received(), "sender must not receive its own frame")
		})
	}
}

func TestSession_BroadcastVerbatim(t *testing.T) {
	s := newTestSession(t)
	recv := &mockSignal{}
	s.AddMember("a", member("a", &mockSignal{}))
	s.AddMember("b", member("b", recv))

	payload := Frame(`{"type":"sphere","radius":75}`)
	s.Broadcast("a", payload)

	frames := recv.received()
	require.Len(t, frames, 1)
	assert.Equal(t, payload, frames[0])
}

func TestSession_BroadcastOrderPerSender(t *testing.T) {
	s := newTestSession(t)
	recv := &mockSignal{}
	s.AddMember("a", member("a", &mockSignal{}))
	s.AddMember("b", member("b", recv))

	for _, f := range []string{"one", "two", "three"} {
		s.Broadcast("a", Frame(f))
	}

	frames := recv.received()
	require.Len(t, frames, 3)
	assert.Equal(t, []Frame{Frame("one"), Frame("two"), Frame("three")}, frames)
}

func TestSession_MembersSnapshot(t *testing.T) {
	s := newTestSession(t)
	s.AddMember("a", member("Amy", &mockSignal{}))
	s.AddMember("b", member("Ben", &mockSignal{}))

	snap := s.MembersSnapshot()
	names := []string{snap[0].Name, snap[1].Name}
	assert.ElementsMatch(t, []string{"Amy", "Ben"}, names)
}
