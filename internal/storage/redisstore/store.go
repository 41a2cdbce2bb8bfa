package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/timekeep-go/internal/core/domain"
)

// DefaultKeyPrefix is prepended to every session key.
const DefaultKeyPrefix = "timekeep:session:"

// Config configures Open.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string

	// DialTimeout bounds the initial ping (default 2s).
	DialTimeout time.Duration
}

// Store implements service.SessionRepository.
type Store struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return New(client, cfg.KeyPrefix), nil
}

// New wraps an existing client. An empty prefix means DefaultKeyPrefix.
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix, now: time.Now}
}

func (s *Store) key(tokenHash string) string {
	return s.prefix + tokenHash
}

// CreateSession stores a session with SET NX. A session that already has
// an expiry gets the remaining lifetime as its TTL.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(session.TokenHash), data, session.TTL(s.now())).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrSessionConflict
	}
	return nil
}

// GetSessionByTokenHash retrieves a session.
func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.key(tokenHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(val, &session); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return &session, nil
}

// DeleteSessionByTokenHash removes a session if present.
func (s *Store) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	return s.client.Del(ctx, s.key(tokenHash)).Err()
}

// DeleteExpiredSessions scans the key prefix and removes sessions expired
// at now. Keys that disappear during the scan are skipped.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	deleted := 0
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 256).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		val, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return deleted, err
		}

		var session domain.Session
		if err := json.Unmarshal(val, &session); err != nil {
			return deleted, fmt.Errorf("session %s: failed to unmarshal: %w", key, err)
		}
		if !session.IsExpired(now) {
			continue
		}

		n, err := s.client.Del(ctx, key).Result()
		if err != nil {
			return deleted, err
		}
		deleted += int(n)
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}
