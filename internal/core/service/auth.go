package service

import (
	"context"
	"errors"
	"time"

	"github.com/yndnr/timekeep-go/internal/core/domain"
)

// AuthService resolves session tokens to identities and manages the
// signup, login and logout flows.
type AuthService struct {
	users      UserRepository
	sessions   SessionRepository
	digester   *domain.Digester
	sessionTTL time.Duration
	observer   Observer
	now        func() time.Time
}

// AuthServiceConfig holds configuration for AuthService.
type AuthServiceConfig struct {
	// SessionTTL is the session lifetime. Zero means sessions never expire.
	SessionTTL time.Duration

	// Digester computes password digests (default: sha256).
	Digester *domain.Digester

	// Observer receives session events (optional).
	Observer Observer

	// Now overrides the clock (tests).
	Now func() time.Time
}

// DefaultAuthServiceConfig returns default configuration.
func DefaultAuthServiceConfig() *AuthServiceConfig {
	d, _ := domain.NewDigester(domain.DigestSHA256)
	return &AuthServiceConfig{
		SessionTTL: 720 * time.Hour,
		Digester:   d,
	}
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserRepository, sessions SessionRepository, config *AuthServiceConfig) *AuthService {
	if config == nil {
		config = DefaultAuthServiceConfig()
	}

	s := &AuthService{
		users:      users,
		sessions:   sessions,
		digester:   config.Digester,
		sessionTTL: config.SessionTTL,
		observer:   config.Observer,
		now:        config.Now,
	}
	if s.digester == nil {
		s.digester, _ = domain.NewDigester(domain.DigestSHA256)
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ============================================================================
// Auth Gate
// ============================================================================

// Authenticate resolves a presented session token to its identity.
//
// An empty token is Anonymous: nil identity and nil error. A token that
// names no live session fails with domain.ErrSessionNotFound, or with
// domain.ErrSessionExpired once its lifetime has passed; callers treat
// both as Anonymous (see IsRejectedSession). Storage failures never
// degrade to Anonymous.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, nil
	}

	session, err := s.lookupSession(ctx, token)
	if err != nil {
		return nil, err
	}

	// The user is read on every call so a removed user takes effect at once.
	user, err := s.users.GetUser(ctx, session.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrSessionNotFound.WithDetails("user removed")
	}
	if err != nil {
		return nil, storageError(err)
	}

	return user.Identity(), nil
}

// IsRejectedSession reports whether an Authenticate error means the token
// was refused rather than that the lookup failed.
func IsRejectedSession(err error) bool {
	return errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrSessionExpired)
}

// lookupSession returns the live session for token. An expired session is
// deleted on the way out.
func (s *AuthService) lookupSession(ctx context.Context, token string) (*domain.Session, error) {
	// 1. Malformed tokens are refused without a storage round trip
	if !domain.ValidateTokenFormat(token) {
		return nil, domain.ErrSessionNotFound.WithDetails("malformed token")
	}

	// 2. Look up by hash
	tokenHash := domain.HashToken(token)
	session, err := s.sessions.GetSessionByTokenHash(ctx, tokenHash)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, storageError(err)
	}

	// 3. Expired sessions are removed lazily
	if session.IsExpired(s.now()) {
		if err := s.sessions.DeleteSessionByTokenHash(ctx, tokenHash); err != nil {
			return nil, storageError(err)
		}
		return nil, domain.ErrSessionExpired
	}

	return session, nil
}

// ============================================================================
// Signup / Login / Logout
// ============================================================================

// Credentials is the username/password pair for signup and login.
type Credentials struct {
	Username string
	Password string
}

// AuthResult is a freshly created session.
type AuthResult struct {
	Token    string // Plaintext token, returned exactly once
	Session  *domain.Session
	Identity *domain.Identity
}

// Signup creates a user and a first session for it.
//
// Returns domain.ErrUserValidation for an empty username or password and
// domain.ErrUsernameTaken if the username exists.
func (s *AuthService) Signup(ctx context.Context, req *Credentials) (*AuthResult, error) {
	// 1. Validate input
	if err := domain.ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	// 2. Digest the password
	digest, err := s.digester.Digest(req.Password)
	if err != nil {
		return nil, err
	}

	// 3. Create the user (the store enforces username uniqueness)
	user, err := domain.NewUser(req.Username, digest)
	if err != nil {
		return nil, err
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, storageError(err)
	}

	// 4. Open a session
	return s.openSession(ctx, user, ReasonSignup)
}

// Login verifies credentials and opens a new session.
//
// Wrong credentials are a normal outcome reported as
// domain.ErrInvalidCredentials; whether the user exists is not revealed.
func (s *AuthService) Login(ctx context.Context, req *Credentials) (*AuthResult, error) {
	// 1. Find the user
	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.observer.LoginFailed()
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, storageError(err)
	}

	// 2. Verify the password (constant-time)
	if !s.digester.Verify(req.Password, user.PasswordDigest) {
		s.observer.LoginFailed()
		return nil, domain.ErrInvalidCredentials
	}

	// 3. Open a session
	return s.openSession(ctx, user, ReasonLogin)
}

// Logout deletes the session behind token. Anonymous callers are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	// 1. Resolve; Anonymous has nothing to delete
	if token == "" {
		return nil
	}
	session, err := s.lookupSession(ctx, token)
	if IsRejectedSession(err) {
		return nil
	}
	if err != nil {
		return err
	}

	// 2. Delete unconditionally; the token is the credential
	if err := s.sessions.DeleteSessionByTokenHash(ctx, session.TokenHash); err != nil {
		return storageError(err)
	}
	return nil
}

// openSession generates a token and stores a session bound to user.
func (s *AuthService) openSession(ctx context.Context, user *domain.User, reason string) (*AuthResult, error) {
	// 1. Generate the token; only its hash is stored
	plaintext, tokenHash, err := domain.GenerateToken()
	if err != nil {
		return nil, err
	}

	// 2. Build and validate the session
	session, err := domain.NewSession(user.ID, tokenHash, s.sessionTTL, s.now())
	if err != nil {
		return nil, err
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}

	// 3. Persist
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, storageError(err)
	}

	s.observer.SessionCreated(reason)
	return &AuthResult{
		Token:    plaintext,
		Session:  session,
		Identity: user.Identity(),
	}, nil
}
