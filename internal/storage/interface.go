package storage

import (
	"context"
	"time"

	"github.com/boardscore/boardscore/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)
	// ListRooms returns all rooms ordered by creation time descending
	ListRooms(ctx context.Context) ([]*model.Room, error)

	// Player operations, scoped to a room
	SavePlayer(ctx context.Context, roomID model.RoomID, player *model.Player) error
	GetPlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error
	ListPlayers(ctx context.Context, roomID model.RoomID) ([]*model.Player, error)
	// IncrementScore atomically adds delta to a player's score and
	// stamps updatedAt. It never reads-modifies-writes through the
	// caller: concurrent increments must not lose updates.
	IncrementScore(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, delta int, updatedAt time.Time) error
	// DeletePlayersForRoom removes every player of a room
	DeletePlayersForRoom(ctx context.Context, roomID model.RoomID) error

	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)

	// Credential operations for registered identities
	SaveCredentials(ctx context.Context, creds *model.Credentials) error
	GetCredentialsByUsername(ctx context.Context, username string) (*model.Credentials, error)
}
