package port

import (
	"time"

	"docqa/internal/domain"
)

// HistoryStore keeps the conversation of CLI sessions between invocations.
type HistoryStore interface {
	Load(sessionID string) ([]domain.Turn, error)

	Append(sessionID string, turns ...domain.Turn) error

	ListSessions() ([]SessionInfo, error)

	Delete(sessionID string) error

	Close() error
}

type SessionInfo struct {
	ID        string
	Turns     int
	UpdatedAt time.Time
}
