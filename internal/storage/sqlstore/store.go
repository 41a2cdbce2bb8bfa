package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yndnr/timekeep-go/internal/core/domain"
)

// Store implements the user, session and timer repositories.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open database. It does not run migrations.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, rebind(s.dialect, query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, rebind(s.dialect, query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, rebind(s.dialect, query), args...)
}

// ============================================================================
// Users
// ============================================================================

const userColumns = `id, username, password_digest, created_at`

// CreateUser inserts a user. The username column is UNIQUE.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordDigest, user.CreatedAt.UnixMilli())
	if isUniqueViolation(err) {
		return domain.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by exact username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u         domain.User
		createdAt int64
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordDigest, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &u, nil
}

// ============================================================================
// Sessions
// ============================================================================

const sessionColumns = `id, user_id, token_hash, created_at, expires_at`

// CreateSession inserts a session. Both token_hash and id are unique.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.exec(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.TokenHash, session.CreatedAt, session.ExpiresAt)
	if isUniqueViolation(err) {
		return domain.ErrSessionConflict
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetSessionByTokenHash retrieves a session by token hash.
func (s *Store) GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var session domain.Session
	err := s.queryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token_hash = ?`, tokenHash,
	).Scan(&session.ID, &session.UserID, &session.TokenHash, &session.CreatedAt, &session.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &session, nil
}

// DeleteSessionByTokenHash removes a session if present.
func (s *Store) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	if _, err := s.exec(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions with 0 < expires_at <= now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	res, err := s.exec(ctx,
		`DELETE FROM sessions WHERE expires_at > 0 AND expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return int(n), nil
}

// ============================================================================
// Timers
// ============================================================================

const timerColumns = `id, user_id, description, started_at, is_active, stopped_at, duration_ms`

// CreateTimer inserts an active timer.
func (s *Store) CreateTimer(ctx context.Context, timer *domain.Timer) error {
	_, err := s.exec(ctx,
		`INSERT INTO timers (`+timerColumns+`) VALUES (?, ?, ?, ?, ?, NULL, NULL)`,
		timer.ID, timer.UserID, timer.Description, timer.StartedAt.UnixMilli(), timer.IsActive)
	if isUniqueViolation(err) {
		return domain.ErrTimerConflict
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetTimer retrieves a timer by ID.
func (s *Store) GetTimer(ctx context.Context, id string) (*domain.Timer, error) {
	row := s.queryRow(ctx, `SELECT `+timerColumns+` FROM timers WHERE id = ?`, id)
	timer, err := scanTimer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTimerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return timer, nil
}

// ListTimers returns the timers of userID with is_active = active.
func (s *Store) ListTimers(ctx context.Context, userID string, active bool) ([]*domain.Timer, error) {
	rows, err := s.query(ctx,
		`SELECT `+timerColumns+` FROM timers
		 WHERE user_id = ? AND is_active = ?
		 ORDER BY started_at, id`, userID, active)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*domain.Timer{}
	for rows.Next() {
		timer, err := scanTimer(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, timer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// StopTimer stops the timer if it is still active. The stop values are
// computed from the current row; the UPDATE only applies while the row is
// active, so of several concurrent stops exactly one affects a row.
func (s *Store) StopTimer(ctx context.Context, id string, stoppedAt time.Time) (bool, error) {
	timer, err := s.GetTimer(ctx, id)
	if errors.Is(err, domain.ErrTimerNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !timer.Stop(stoppedAt) {
		return false, nil
	}

	res, err := s.exec(ctx,
		`UPDATE timers SET is_active = ?, stopped_at = ?, duration_ms = ?
		 WHERE id = ? AND is_active = ?`,
		false, timer.StoppedAt.UnixMilli(), timer.Duration.Milliseconds(), id, true)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTimer(sc scanner) (*domain.Timer, error) {
	var (
		t          domain.Timer
		startedAt  int64
		stoppedAt  sql.NullInt64
		durationMs sql.NullInt64
	)
	if err := sc.Scan(&t.ID, &t.UserID, &t.Description, &startedAt, &t.IsActive, &stoppedAt, &durationMs); err != nil {
		return nil, err
	}

	t.StartedAt = time.UnixMilli(startedAt).UTC()
	if stoppedAt.Valid {
		at := time.UnixMilli(stoppedAt.Int64).UTC()
		t.StoppedAt = &at
	}
	if durationMs.Valid {
		d := time.Duration(durationMs.Int64) * time.Millisecond
		t.Duration = &d
	}
	return &t, nil
}
