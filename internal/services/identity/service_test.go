package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/boardscore/boardscore/internal/dependencies/mocks"
	"github.com/boardscore/boardscore/internal/services/user"
	"github.com/boardscore/boardscore/internal/storage/memory"
	"github.com/boardscore/boardscore/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite

	clock   *mocks.MockClock
	users   *user.Service
	service *Service
	ctx     context.Context
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.users = user.NewService(memory.New(), s.clock, testutil.NopLogger())
	s.service = NewService(s.users, s.clock, Config{SessionDuration: time.Hour}, testutil.NopLogger())
	s.ctx = context.Background()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestSignInGuest() {
	session, err := s.service.SignInGuest(s.ctx, "  Alice  ")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.True(session.Identity.IsGuest)
	s.Equal("Alice", session.Identity.DisplayName)
	s.Equal("Alice", session.Identity.Nickname)
	s.Equal(s.clock.Now(), session.CreatedAt)
	s.Equal(s.clock.Now().Add(time.Hour), session.ExpiresAt)

	// The guest gets a stored profile
	stored, err := s.users.Get(s.ctx, session.Identity.UserID)
	s.Require().NoError(err)
	s.Equal("Alice", stored.DisplayName)
}

func (s *ServiceSuite) TestGuestsGetDistinctIdentities() {
	first, err := s.service.SignInGuest(s.ctx, "Alice")
	s.Require().NoError(err)
	second, err := s.service.SignInGuest(s.ctx, "Alice")
	s.Require().NoError(err)

	s.NotEqual(first.Identity.UserID, second.Identity.UserID)
	s.NotEqual(first.Token, second.Token)
}

func (s *ServiceSuite) TestRegisterAndLogin() {
	registered, err := s.service.Register(s.ctx, "alice", "hunter2", "Alice")
	s.Require().NoError(err)
	s.False(registered.Identity.IsGuest)

	session, err := s.service.Login(s.ctx, "alice", "hunter2")
	s.Require().NoError(err)
	s.Equal(registered.Identity.UserID, session.Identity.UserID)
	s.NotEqual(registered.Token, session.Token)
}

func (s *ServiceSuite) TestRegisterDuplicateUsername() {
	_, err := s.service.Register(s.ctx, "alice", "hunter2", "Alice")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "other", "Impostor")
	s.ErrorIs(err, ErrUsernameExists)
}

func (s *ServiceSuite) TestRegisterHashesPassword() {
	_, err := s.service.Register(s.ctx, "alice", "hunter2", "Alice")
	s.Require().NoError(err)

	creds, err := s.users.Credentials(s.ctx, "alice")
	s.Require().NoError(err)
	s.NotEqual("hunter2", creds.PasswordHash)
	s.NotContains(creds.PasswordHash, "hunter2")
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	_, err := s.service.Register(s.ctx, "alice", "hunter2", "Alice")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownUsername() {
	_, err := s.service.Login(s.ctx, "nobody", "whatever")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestResolve() {
	session, err := s.service.SignInGuest(s.ctx, "Alice")
	s.Require().NoError(err)

	identity, err := s.service.Resolve(session.Token)
	s.Require().NoError(err)
	s.Equal(session.Identity, *identity)
}

func (s *ServiceSuite) TestResolveUnknownToken() {
	_, err := s.service.Resolve("sess_bogus")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestResolveExpiredSession() {
	session, err := s.service.SignInGuest(s.ctx, "Alice")
	s.Require().NoError(err)

	s.clock.Advance(time.Hour + time.Second)

	_, err = s.service.Resolve(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestSignOut() {
	session, err := s.service.SignInGuest(s.ctx, "Alice")
	s.Require().NoError(err)

	s.service.SignOut(session.Token)

	_, err = s.service.Resolve(session.Token)
	s.ErrorIs(err, ErrInvalidSession)

	// Signing out twice is harmless
	s.service.SignOut(session.Token)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	expired, err := s.service.SignInGuest(s.ctx, "Old")
	s.Require().NoError(err)

	s.clock.Advance(30 * time.Minute)
	fresh, err := s.service.SignInGuest(s.ctx, "New")
	s.Require().NoError(err)

	s.clock.Advance(45 * time.Minute)
	s.service.CleanExpiredSessions()

	_, err = s.service.Resolve(expired.Token)
	s.ErrorIs(err, ErrInvalidSession)

	_, err = s.service.Resolve(fresh.Token)
	s.NoError(err)
}
