package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"housepoint/internal/model"
)

const (
	keyUsers          = "users"
	keyChores         = "chores"
	keyRewards        = "rewards"
	keyPendingRewards = "pendingRewards"
	keyCurrentUser    = "currentUser"
)

// Store persists the ledger model in the snapshots table as independent
// key-value entries: one JSON array per collection plus the current
// session user. Keys are written one at a time, not as a single
// transaction, so a crash mid-save leaves the unwritten keys at their
// prior values.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Save writes every entry of the snapshot. It stops at the first write
// error; earlier keys keep their new values, later keys their old ones.
func (s *Store) Save(snap model.Snapshot) error {
	if err := s.setJSON(keyUsers, emptyIfNil(snap.Users)); err != nil {
		return err
	}
	if err := s.setJSON(keyChores, emptyIfNil(snap.Chores)); err != nil {
		return err
	}
	if err := s.setJSON(keyRewards, emptyIfNil(snap.Rewards)); err != nil {
		return err
	}
	if err := s.setJSON(keyPendingRewards, emptyIfNil(snap.PendingRewards)); err != nil {
		return err
	}

	var current string
	if snap.CurrentUserID != nil {
		current = snap.CurrentUserID.String()
	}
	return s.set(keyCurrentUser, []byte(current))
}

// Load reads the persisted snapshot. Missing or undecodable entries
// degrade to empty collections; they never abort startup.
func (s *Store) Load() model.Snapshot {
	var snap model.Snapshot
	snap.Users = loadList[model.User](s, keyUsers)
	snap.Chores = loadList[model.Chore](s, keyChores)
	snap.Rewards = loadList[model.Reward](s, keyRewards)
	snap.PendingRewards = loadList[model.PendingReward](s, keyPendingRewards)

	if raw, ok := s.get(keyCurrentUser); ok && len(raw) > 0 {
		id, err := uuid.Parse(string(raw))
		if err != nil {
			s.logger.Warn("discarding unparseable current user", "error", err)
		} else {
			snap.CurrentUserID = &id
		}
	}
	return snap
}

func (s *Store) set(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}
	return nil
}

func (s *Store) get(key string) ([]byte, bool) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM snapshots WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("read snapshot", "key", key, "error", err)
		return nil, false
	}
	return value, true
}

func (s *Store) setJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot %q: %w", key, err)
	}
	return s.set(key, data)
}

func loadList[T any](s *Store, key string) []T {
	raw, ok := s.get(key)
	if !ok {
		return nil
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		s.logger.Warn("discarding corrupt snapshot entry", "key", key, "error", err)
		return nil
	}
	return list
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
