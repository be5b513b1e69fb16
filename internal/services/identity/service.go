// Package identity provides in-process sign-in for the scoreboard.
// Identities are either guests (no credentials, created on demand) or
// registered accounts (username + bcrypt password). Sessions are
// bearer tokens held in memory with an expiry.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/boardscore/boardscore/internal/dependencies/clock"
	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/services/user"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrUsernameExists     = errors.New("username already exists")
)

// Identity is the signed-in principal attached to a session
type Identity struct {
	UserID      model.UserID
	DisplayName string
	Nickname    string
	AvatarURL   string
	IsGuest     bool
}

// Session represents an authenticated session
type Session struct {
	Token     string
	Identity  Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Provider is the surface the rest of the application sees: resolve a
// token to an identity, and end a session. The concrete Service also
// issues sessions.
type Provider interface {
	Resolve(token string) (*Identity, error)
	SignOut(token string)
}

// Config holds configuration for the identity service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default identity configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// Service handles sign-in and session management
type Service struct {
	users  *user.Service
	clock  clock.Clock
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

var _ Provider = (*Service)(nil)

// NewService creates an identity Service
func NewService(users *user.Service, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		users:           users,
		clock:           clk,
		logger:          logger.With(slog.String("component", "identity")),
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

// SignInGuest creates an anonymous identity and session
func (s *Service) SignInGuest(ctx context.Context, displayName string) (*Session, error) {
	id := model.UserID(generateID("u_"))

	u, err := s.users.Upsert(ctx, id, user.Profile{
		DisplayName: strings.TrimSpace(displayName),
	})
	if err != nil {
		return nil, err
	}

	return s.createSession(u, true), nil
}

// Register creates a registered account and signs it in
func (s *Service) Register(ctx context.Context, username, password, displayName string) (*Session, error) {
	_, err := s.users.Credentials(ctx, username)
	if err == nil {
		return nil, ErrUsernameExists
	}
	if !errors.Is(err, model.ErrCredentialsNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id := model.UserID(generateID("u_"))
	u, err := s.users.Upsert(ctx, id, user.Profile{
		DisplayName: strings.TrimSpace(displayName),
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.users.SaveCredentials(ctx, &model.Credentials{
		UserID:       id,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return nil, err
	}

	return s.createSession(u, false), nil
}

// Login authenticates a registered account and creates a session
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	creds, err := s.users.Credentials(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrCredentialsNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.Get(ctx, creds.UserID)
	if err != nil {
		return nil, err
	}

	return s.createSession(u, false), nil
}

// Resolve checks a session token and returns its identity
func (s *Service) Resolve(token string) (*Identity, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	identity := session.Identity
	return &identity, nil
}

// SignOut removes a session. Unknown tokens are ignored.
func (s *Service) SignOut(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}

func (s *Service) createSession(u *model.User, guest bool) *Session {
	now := s.clock.Now()
	session := &Session{
		Token: generateID("sess_"),
		Identity: Identity{
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			Nickname:    u.Nickname,
			AvatarURL:   u.AvatarURL,
			IsGuest:     guest,
		},
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

// generateID generates a random ID with a prefix
func generateID(prefix string) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}
