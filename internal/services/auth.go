package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wolfiez/wallpaper/internal/store"
	"github.com/wolfiez/wallpaper/types"
)

// SessionRepository defines persistence operations for login sessions.
type SessionRepository interface {
	Replace(ctx context.Context, session types.Session) error
	GetValid(ctx context.Context, token string) (types.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// AuthService manages the session lifecycle on top of credential
// verification. Logging in replaces any previous session for the user, so
// at most one session per user is ever live.
type AuthService struct {
	users      *UserService
	sessions   SessionRepository
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAuthService(users *UserService, sessions SessionRepository, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Login verifies the credentials and establishes a fresh session,
// expiring any session the user already had.
func (s *AuthService) Login(ctx context.Context, email, password string) (types.User, types.Session, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return types.User{}, types.Session{}, err
	}

	// Opportunistic cleanup; stale rows are harmless but pile up.
	_, _ = s.sessions.DeleteExpired(ctx)

	now := s.now()
	session := types.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Replace(ctx, session); err != nil {
		return types.User{}, types.Session{}, err
	}

	return user, session, nil
}

// Logout invalidates the session. Unknown tokens are not an error; the
// session is gone either way.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	err := s.sessions.Delete(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// Resolve maps a session token to the authenticated user.
func (s *AuthService) Resolve(ctx context.Context, token string) (types.User, error) {
	session, err := s.sessions.GetValid(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidSession
		}
		return types.User{}, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidSession
		}
		return types.User{}, err
	}
	return user, nil
}
