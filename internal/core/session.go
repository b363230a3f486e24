package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/diggerconnect/relay/internal/domain"
)

// sessionImpl is a threadsafe in-memory session.
// It never closes adapter-owned resources.
type sessionImpl struct {
	sess    *domain.Session
	mu      sync.RWMutex
	members map[ConnID]MemberSession
}

func NewSessionService(sess *domain.Session) SessionService {
	return &sessionImpl{
		sess:    sess,
		members: make(map[ConnID]MemberSession),
	}
}

func (s *sessionImpl) Session() *domain.Session { return s.sess }

func (s *sessionImpl) MemberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

func (s *sessionImpl) AddMember(id ConnID, ms MemberSession) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = ms
	log.Info().Str("module", "core.session").Str("session", string(s.sess.ID)).Str("conn", string(id)).Str("name", ms.Meta().Name).Msg("member added")
	return true
}

func (s *sessionImpl) RemoveMember(id ConnID) (MemberSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms, ok := s.members[id]
	if !ok {
		return nil, false
	}
	delete(s.members, id)
	log.Info().Str("module", "core.session").Str("session", string(s.sess.ID)).Str("conn", string(id)).Msg("member removed")
	return ms, true
}

func (s *sessionImpl) Broadcast(from ConnID, data Frame) PublishResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := PublishResult{}
	for id, m := range s.members {
		if id == from {
			continue
		}
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, id)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.session").Str("session", string(s.sess.ID)).Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (s *sessionImpl) MembersSnapshot() []MemberDTO {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MemberDTO, 0, len(s.members))
	for _, ms := range s.members {
		out = append(out, MemberDTO{Name: ms.Meta().Name})
	}
	return out
}

func (s *sessionImpl) Member(id ConnID) (MemberDTO, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ms, ok := s.members[id]
	if !ok {
		return MemberDTO{}, false
	}
	return MemberDTO{Name: ms.Meta().Name}, true
}
