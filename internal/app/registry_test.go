package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diggerconnect/relay/internal/core"
	"github.com/diggerconnect/relay/internal/domain"
)

func TestRegistry_Create(t *testing.T) {
	r := NewSessionRegistry()

	a := r.Create("Alpha", "conn-1")
	b := r.Create("Alpha", "conn-2")

	require.NotEmpty(t, a.Session().ID)
	assert.NotEqual(t, a.Session().ID, b.Session().ID, "ids must be unique even for equal names")
	assert.Equal(t, domain.SessionName("Alpha"), a.Session().Name)
	assert.Equal(t, "conn-1", a.Session().CreatedBy)
	assert.WithinDuration(t, time.Now(), a.Session().CreatedAt, time.Second)

	got, ok := r.Get(a.Session().ID)
	require.True(t, ok)
	assert.Same(t, a.Session(), got.Session())
}

func TestRegistry_GetMissing(t *testing.T) {
	r := NewSessionRegistry()
	_, ok := r.Get("nope")
	assert.False(t, ok)
}

func TestRegistry_RemoveIfEmpty(t *testing.T) {
	r := NewSessionRegistry()
	s := r.Create("Alpha", "conn-1")
	id := s.Session().ID

	s.AddMember("conn-1", newFakeMember("Amy"))
	assert.False(t, r.RemoveIfEmpty(id), "non-empty session must survive")
	_, ok := r.Get(id)
	assert.True(t, ok)

	s.RemoveMember("conn-1")
	assert.True(t, r.RemoveIfEmpty(id))
	_, ok = r.Get(id)
	assert.False(t, ok)

	// idempotent for absent ids
	assert.False(t, r.RemoveIfEmpty(id))
}

func TestRegistry_ListDeterministic(t *testing.T) {
	r := NewSessionRegistry()
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		r.Create(domain.SessionName(name), "conn-1")
	}

	first := r.List()
	require.Len(t, first, 3)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.List())
	}
	for i := 1; i < len(first); i++ {
		assert.Less(t, string(first[i-1].ID), string(first[i].ID), "list must be sorted by id")
	}
}

func TestRegistry_Purge(t *testing.T) {
	r := NewSessionRegistry()
	r.Create("Alpha", "conn-1")
	r.Create("Beta", "conn-1")

	r.Purge()
	assert.Empty(t, r.List())
}

func newFakeMember(name string) core.MemberSession {
	return core.NewMemberSession(&domain.Member{Name: name, JoinedAt: time.Now()}, nopSignal{})
}

type nopSignal struct{}

func (nopSignal) TrySend(core.Frame) error { return nil }
func (nopSignal) Close()                   {}
