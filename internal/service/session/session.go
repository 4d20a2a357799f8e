package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/linetrack/internal/repository/store"
)

// User is the signed-in operator as returned by the backend login.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Session is everything persisted on login.
type Session struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	User         User     `json:"user"`
	Permissions  []string `json:"permissions"`
}

var sessionKeys = []string{store.KeyUserToken, store.KeyRefreshToken, store.KeyUser, store.KeyPermissions}

// Service persists the authenticated session and hands the bearer token to the gateway.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService wires a session service on top of the durable store.
func NewService(s store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, logger: logger}
}

// Token returns the stored bearer token, or "" when nobody is signed in.
func (s *Service) Token(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx, store.KeyUserToken)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

// Save stores a new session, replacing any previous one.
func (s *Service) Save(ctx context.Context, sess Session) error {
	if sess.Token == "" {
		return errors.New("session token must not be empty")
	}
	if sess.Permissions == nil {
		sess.Permissions = []string{}
	}

	if err := s.store.Set(ctx, store.KeyUserToken, sess.Token); err != nil {
		return err
	}
	if err := s.store.Set(ctx, store.KeyRefreshToken, sess.RefreshToken); err != nil {
		return err
	}
	if err := store.SetJSON(ctx, s.store, store.KeyUser, sess.User); err != nil {
		return err
	}
	if err := store.SetJSON(ctx, s.store, store.KeyPermissions, sess.Permissions); err != nil {
		return err
	}

	s.logger.Info("session saved", zap.Int("user_id", sess.User.ID))
	return nil
}

// Load restores the stored session. A session requires both a token and a user.
func (s *Service) Load(ctx context.Context) (Session, bool, error) {
	token, err := s.Token(ctx)
	if err != nil || token == "" {
		return Session{}, false, err
	}

	var sess Session
	sess.Token = token

	if err := store.GetJSON(ctx, s.store, store.KeyUser, &sess.User); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}

	refresh, err := s.store.Get(ctx, store.KeyRefreshToken)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Session{}, false, err
	}
	sess.RefreshToken = refresh

	if err := store.GetJSON(ctx, s.store, store.KeyPermissions, &sess.Permissions); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("stored permissions unreadable", zap.Error(err))
	}
	if sess.Permissions == nil {
		sess.Permissions = []string{}
	}

	return sess, true, nil
}

// Clear signs out by removing every session key.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.RemoveMany(ctx, sessionKeys); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info("session cleared")
	return nil
}
