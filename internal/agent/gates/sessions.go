package gates

import (
	"context"
	"sync"

	"github.com/toolscout-core/server/internal/agent/model"
)

// StaticSessions resolves sessions from an in-memory table. Unknown ids are anonymous.
type StaticSessions struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
}

func NewStaticSessions(sessions ...model.Session) *StaticSessions {
	s := &StaticSessions{sessions: make(map[string]model.Session, len(sessions))}
	for _, sess := range sessions {
		s.sessions[sess.ID] = sess
	}
	return s
}

func (s *StaticSessions) Put(sess model.Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
}

func (s *StaticSessions) Resolve(_ context.Context, id string) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	return model.Session{ID: id}, nil
}

var _ model.SessionResolver = (*StaticSessions)(nil)
