package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"docqa/internal/adapter/store"
	"docqa/internal/domain"
	"docqa/internal/port"
)

// MemoryHistoryStore keeps sessions for the lifetime of the process. Used when
// history persistence is disabled.
type MemoryHistoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	maxTurns int
}

type session struct {
	turns     []domain.Turn
	updatedAt time.Time
}

func NewMemoryHistoryStore(maxTurns int) *MemoryHistoryStore {
	return &MemoryHistoryStore{
		sessions: make(map[string]*session),
		maxTurns: maxTurns,
	}
}

func (s *MemoryHistoryStore) Load(sessionID string) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return append([]domain.Turn(nil), sess.turns...), nil
}

func (s *MemoryHistoryStore) Append(sessionID string, turns ...domain.Turn) error {
	if sessionID == "" {
		return fmt.Errorf("session id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	sess.turns = store.TrimHistory(append(sess.turns, turns...), s.maxTurns)
	sess.updatedAt = time.Now()
	return nil
}

func (s *MemoryHistoryStore) ListSessions() ([]port.SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]port.SessionInfo, 0, len(s.sessions))
	for id, sess := range s.sessions {
		infos = append(infos, port.SessionInfo{ID: id, Turns: len(sess.turns), UpdatedAt: sess.updatedAt})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	return infos, nil
}

func (s *MemoryHistoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryHistoryStore) Close() error {
	return nil
}
