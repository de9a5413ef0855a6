package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"docqa/internal/domain"
	"docqa/internal/port"
)

var (
	bucketSessions = []byte("sessions")
	bucketMeta     = []byte("meta")
)

// BoltHistoryStore persists CLI conversations in a bbolt file, one record per session.
type BoltHistoryStore struct {
	db       *bbolt.DB
	maxTurns int
}

type sessionRecord struct {
	Turns     []domain.Turn `json:"turns"`
	UpdatedAt int64         `json:"updated_at"`
}

// NewBoltHistoryStore opens (or creates) the database at path and brings its schema up to date.
// maxTurns bounds each session's stored history; 0 keeps everything.
func NewBoltHistoryStore(path string, maxTurns int) (*BoltHistoryStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucketMeta, err)
	}

	s := &BoltHistoryStore{db: db, maxTurns: maxTurns}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltHistoryStore) Load(sessionID string) ([]domain.Turn, error) {
	var rec sessionRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSessions).Get([]byte(sessionID))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return rec.Turns, nil
}

func (s *BoltHistoryStore) Append(sessionID string, turns ...domain.Turn) error {
	if sessionID == "" {
		return fmt.Errorf("session id is empty")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSessions)

		var rec sessionRecord
		if data := b.Get([]byte(sessionID)); data != nil {
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
		}

		rec.Turns = TrimHistory(append(rec.Turns, turns...), s.maxTurns)
		rec.UpdatedAt = time.Now().Unix()

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(sessionID), data)
	})
}

func (s *BoltHistoryStore) ListSessions() ([]port.SessionInfo, error) {
	var sessions []port.SessionInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).ForEach(func(k, v []byte) error {
			var rec sessionRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			sessions = append(sessions, port.SessionInfo{
				ID:        string(k),
				Turns:     len(rec.Turns),
				UpdatedAt: time.Unix(rec.UpdatedAt, 0),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

func (s *BoltHistoryStore) Delete(sessionID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(sessionID))
	})
}

func (s *BoltHistoryStore) Close() error {
	return s.db.Close()
}

// TrimHistory keeps at most maxTurns of the newest turns and never starts on a model turn,
// since generation APIs expect the conversation to open with the user.
func TrimHistory(turns []domain.Turn, maxTurns int) []domain.Turn {
	if maxTurns > 0 && len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	for len(turns) > 0 && turns[0].Role == domain.RoleModel {
		turns = turns[1:]
	}
	return turns
}
