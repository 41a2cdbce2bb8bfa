package kv

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/timekeep-go/internal/core/domain"
)

// Key prefixes.
const (
	prefixUser     = "user/"
	prefixUsername = "username/"
	prefixSession  = "session/"
	prefixTimer    = "timer/"
	prefixOwner    = "owner/"
)

// Store implements the user, session and timer repositories on a DB.
type Store struct {
	db *DB
}

// NewStore creates a Store backed by db.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func userKey(id string) []byte { return []byte(prefixUser + id) }
func usernameKey(name string) []byte { return []byte(prefixUsername + name) }
func sessionKey(hash string) []byte { return []byte(prefixSession + hash) }
func timerKey(id string) []byte { return []byte(prefixTimer + id) }
func ownerPrefix(userID string) []byte { return []byte(prefixOwner + userID + "/") }
func ownerKey(userID, id string) []byte { return append(ownerPrefix(userID), id...) }

// getJSON loads key into v. Returns badger.ErrKeyNotFound if absent.
func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// ============================================================================
// Users
// ============================================================================

// CreateUser stores a user and claims its username in one transaction.
func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	err := s.db.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(usernameKey(user.Username)); err == nil {
			return domain.ErrUsernameTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(usernameKey(user.Username), []byte(user.ID)); err != nil {
			return err
		}
		return setJSON(txn, userKey(user.ID), user)
	})
	// A conflict means a concurrent transaction claimed the same username.
	if errors.Is(err, badger.ErrConflict) {
		return domain.ErrUsernameTaken
	}
	return err
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := s.db.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, userKey(id), &user)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user through the username index.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(username))
		if err != nil {
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, userKey(string(id)), &user)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ============================================================================
// Sessions
// ============================================================================

// CreateSession stores a session. Sessions with an expiry get a matching
// Badger TTL so the key disappears on its own.
func (s *Store) CreateSession(_ context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	err = s.db.db.Update(func(txn *badger.Txn) error {
		key := sessionKey(session.TokenHash)
		if _, err := txn.Get(key); err == nil {
			return domain.ErrSessionConflict
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		entry := badger.NewEntry(key, data)
		if ttl := session.TTL(time.Now()); ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if errors.Is(err, badger.ErrConflict) {
		return domain.ErrSessionConflict
	}
	return err
}

// GetSessionByTokenHash retrieves a session by token hash.
func (s *Store) GetSessionByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	var session domain.Session
	err := s.db.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, sessionKey(tokenHash), &session)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSessionByTokenHash removes a session if present.
func (s *Store) DeleteSessionByTokenHash(_ context.Context, tokenHash string) error {
	return s.db.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(tokenHash))
	})
}

// DeleteExpiredSessions removes sessions whose ExpiresAt has passed at now.
// Badger TTLs normally get there first; this catches sessions whose clock
// view differs from Badger's.
func (s *Store) DeleteExpiredSessions(_ context.Context, now time.Time) (int, error) {
	var expired [][]byte
	err := s.db.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixSession)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var session domain.Session
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			}); err != nil {
				return err
			}
			if session.IsExpired(now) {
				expired = append(expired, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil || len(expired) == 0 {
		return 0, err
	}

	wb := s.db.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range expired {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return len(expired), nil
}

// ============================================================================
// Timers
// ============================================================================

// CreateTimer stores a timer and its owner index entry.
func (s *Store) CreateTimer(_ context.Context, timer *domain.Timer) error {
	err := s.db.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(timerKey(timer.ID)); err == nil {
			return domain.ErrTimerConflict
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := setJSON(txn, timerKey(timer.ID), timer); err != nil {
			return err
		}
		return txn.Set(ownerKey(timer.UserID, timer.ID), nil)
	})
	if errors.Is(err, badger.ErrConflict) {
		return domain.ErrTimerConflict
	}
	return err
}

// GetTimer retrieves a timer by ID.
func (s *Store) GetTimer(_ context.Context, id string) (*domain.Timer, error) {
	var timer domain.Timer
	err := s.db.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, timerKey(id), &timer)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrTimerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &timer, nil
}

// ListTimers scans the owner index of userID and returns matching timers.
func (s *Store) ListTimers(_ context.Context, userID string, active bool) ([]*domain.Timer, error) {
	result := []*domain.Timer{}
	prefix := ownerPrefix(userID)

	err := s.db.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			id := string(it.Item().Key()[len(prefix):])

			var timer domain.Timer
			if err := getJSON(txn, timerKey(id), &timer); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			if timer.IsActive == active {
				result = append(result, &timer)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	domain.SortTimers(result)
	return result, nil
}

// StopTimer stops the timer if it is still active. The read and write
// share one transaction; losing a commit race to another stop reports
// no change.
func (s *Store) StopTimer(_ context.Context, id string, stoppedAt time.Time) (bool, error) {
	stopped := false
	err := s.db.db.Update(func(txn *badger.Txn) error {
		var timer domain.Timer
		if err := getJSON(txn, timerKey(id), &timer); err != nil {
			return err
		}
		if !timer.Stop(stoppedAt) {
			return nil
		}
		stopped = true
		return setJSON(txn, timerKey(id), &timer)
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound), errors.Is(err, badger.ErrConflict):
		return false, nil
	case err != nil:
		return false, err
	}
	return stopped, nil
}

// Ping reports whether the database is usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
