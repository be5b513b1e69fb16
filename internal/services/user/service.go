// Package user manages stored profiles and the recently visited rooms
// list for signed-in identities.
package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/boardscore/boardscore/internal/dependencies/clock"
	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/storage"
)

// Profile carries the identity-provider fields synced on sign-in
type Profile struct {
	Email       string
	DisplayName string
	AvatarURL   string
}

// Service manages user profiles
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewService creates a user Service
func NewService(storage storage.Storage, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clk,
		logger:  logger.With(slog.String("component", "user")),
	}
}

// Get retrieves a user's stored profile
func (s *Service) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.storage.GetUser(ctx, id)
}

// Upsert syncs identity-provider fields into the stored profile,
// creating it on first sign-in. Nickname is user-owned: it is set to
// DisplayName only at creation and never overwritten after that.
func (s *Service) Upsert(ctx context.Context, id model.UserID, profile Profile) (*model.User, error) {
	now := s.clock.Now()

	existing, err := s.storage.GetUser(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			return nil, err
		}
		user := &model.User{
			ID:          id,
			Email:       profile.Email,
			DisplayName: profile.DisplayName,
			Nickname:    profile.DisplayName,
			AvatarURL:   profile.AvatarURL,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.storage.SaveUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	existing.Email = profile.Email
	existing.DisplayName = profile.DisplayName
	existing.AvatarURL = profile.AvatarURL
	existing.UpdatedAt = now
	if err := s.storage.SaveUser(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// SetNickname updates the user-chosen display name shown on boards
func (s *Service) SetNickname(ctx context.Context, id model.UserID, nickname string) (*model.User, error) {
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Nickname = strings.TrimSpace(nickname)
	user.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Credentials looks up the stored credentials for a username
func (s *Service) Credentials(ctx context.Context, username string) (*model.Credentials, error) {
	return s.storage.GetCredentialsByUsername(ctx, username)
}

// SaveCredentials stores credentials for a registered identity
func (s *Service) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	return s.storage.SaveCredentials(ctx, creds)
}

// AddRecentRoom records a room visit at the head of the user's recent
// list. A previous entry for the same room is replaced, and the list
// is capped at MaxRecentRooms.
func (s *Service) AddRecentRoom(ctx context.Context, id model.UserID, visit model.RecentRoom) error {
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return err
	}

	visit.LastAccess = s.clock.Now()

	recent := make([]model.RecentRoom, 0, len(user.RecentRooms)+1)
	recent = append(recent, visit)
	for _, r := range user.RecentRooms {
		if r.RoomID == visit.RoomID {
			continue
		}
		recent = append(recent, r)
	}
	if len(recent) > model.MaxRecentRooms {
		recent = recent[:model.MaxRecentRooms]
	}

	user.RecentRooms = recent
	user.UpdatedAt = visit.LastAccess
	return s.storage.SaveUser(ctx, user)
}

// RecentRooms returns the user's recently visited rooms, most recent
// first
func (s *Service) RecentRooms(ctx context.Context, id model.UserID) ([]model.RecentRoom, error) {
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return append([]model.RecentRoom(nil), user.RecentRooms...), nil
}

// RemoveRecentRoom drops one room from the user's recent list.
// Removing a room that is not listed is a no-op.
func (s *Service) RemoveRecentRoom(ctx context.Context, id model.UserID, roomID model.RoomID) error {
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return err
	}

	recent := user.RecentRooms[:0]
	for _, r := range user.RecentRooms {
		if r.RoomID != roomID {
			recent = append(recent, r)
		}
	}
	if len(recent) == len(user.RecentRooms) {
		return nil
	}

	user.RecentRooms = recent
	user.UpdatedAt = s.clock.Now()
	return s.storage.SaveUser(ctx, user)
}

// ClearRecentRooms empties the user's recent list
func (s *Service) ClearRecentRooms(ctx context.Context, id model.UserID) error {
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return err
	}

	user.RecentRooms = nil
	user.UpdatedAt = s.clock.Now()
	return s.storage.SaveUser(ctx, user)
}
