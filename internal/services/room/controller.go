package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/boardscore/boardscore/internal/dependencies/clock"
	"github.com/boardscore/boardscore/internal/dependencies/random"
	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/password"
	"github.com/boardscore/boardscore/internal/roomid"
	"github.com/boardscore/boardscore/internal/storage"
	"github.com/boardscore/boardscore/internal/watch"
)

// maxCodeAttempts caps the generate-and-check loop. Collisions in a
// 32^6 space are practically impossible, so exhausting this means the
// existence check itself is broken.
const maxCodeAttempts = 100

// Controller manages room lifecycle and the room document feed
type Controller struct {
	storage storage.Storage
	hubs    *watch.HubManager
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new room Controller
func NewController(
	storage storage.Storage,
	hubs *watch.HubManager,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		hubs:    hubs,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "room")),
	}
}

// Exists reports whether a room with the given id exists
func (c *Controller) Exists(ctx context.Context, id model.RoomID) (bool, error) {
	return c.storage.RoomExists(ctx, id)
}

// Get retrieves a room by id
func (c *Controller) Get(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return c.storage.GetRoom(ctx, id)
}

// List returns all rooms, newest first
func (c *Controller) List(ctx context.Context) ([]*model.Room, error) {
	return c.storage.ListRooms(ctx)
}

// Create allocates an id, hashes the password and stores a new room.
//
// A custom id is normalized and checked once; a collision surfaces as
// ErrRoomIDTaken for the user to pick another. Generated codes loop
// until an unused one is found.
func (c *Controller) Create(ctx context.Context, dto model.CreateRoomDTO) (*model.Room, error) {
	var id model.RoomID
	if dto.CustomID != "" {
		id = roomid.Normalize(dto.CustomID)
		if id == "" {
			// Nothing survived normalization, e.g. "!!!"
			return nil, model.ErrInvalidRoomID
		}
		exists, err := c.storage.RoomExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, model.ErrRoomIDTaken
		}
	} else {
		var err error
		id, err = c.allocateCode(ctx)
		if err != nil {
			return nil, err
		}
	}

	var hash string
	if dto.Password != "" {
		var err error
		hash, err = password.Hash(dto.Password)
		if err != nil {
			return nil, err
		}
	}

	room := &model.Room{
		ID:           id,
		Name:         strings.TrimSpace(dto.Name),
		OwnerID:      dto.OwnerID,
		PasswordHash: hash,
		Status:       model.RoomStatusActive,
		CreatedAt:    c.clock.Now(),
		FinishedAt:   nil,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	c.publish(ctx, id)
	return room, nil
}

// allocateCode loops generate -> existence check until an unused code
// is found
func (c *Controller) allocateCode(ctx context.Context) (model.RoomID, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		id := roomid.GenerateCode(c.random)
		exists, err := c.storage.RoomExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", model.ErrCodeGeneration
}

// Finish puts a room in read-only mode
func (c *Controller) Finish(ctx context.Context, id model.RoomID, actor model.UserID) error {
	room, err := c.storage.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(room, actor); err != nil {
		return err
	}

	now := c.clock.Now()
	room.Status = model.RoomStatusFinished
	room.FinishedAt = &now

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return err
	}
	c.publish(ctx, id)
	return nil
}

// Reopen makes a finished room active again and clears FinishedAt
func (c *Controller) Reopen(ctx context.Context, id model.RoomID, actor model.UserID) error {
	room, err := c.storage.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(room, actor); err != nil {
		return err
	}

	room.Status = model.RoomStatusActive
	room.FinishedAt = nil

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return err
	}
	c.publish(ctx, id)
	return nil
}

// UpdatePassword changes or clears a room's password.
// An empty newPassword removes protection.
func (c *Controller) UpdatePassword(ctx context.Context, id model.RoomID, actor model.UserID, newPassword string) error {
	room, err := c.storage.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(room, actor); err != nil {
		return err
	}

	if newPassword == "" {
		room.PasswordHash = ""
	} else {
		hash, err := password.Hash(newPassword)
		if err != nil {
			return err
		}
		room.PasswordHash = hash
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return err
	}
	c.publish(ctx, id)
	return nil
}

// VerifyPassword checks a candidate password against the room's
// stored hash. Rooms without a password always verify.
func (c *Controller) VerifyPassword(ctx context.Context, id model.RoomID, candidate string) error {
	room, err := c.storage.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if !password.Verify(room.PasswordHash, candidate) {
		return model.ErrWrongPassword
	}
	return nil
}

// Delete removes a room and all of its players.
// Players are deleted first so a failure cannot orphan them.
func (c *Controller) Delete(ctx context.Context, id model.RoomID, actor model.UserID) error {
	room, err := c.storage.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(room, actor); err != nil {
		return err
	}

	if err := c.storage.DeletePlayersForRoom(ctx, id); err != nil {
		return fmt.Errorf("deleting players for room %s: %w", id, err)
	}
	if err := c.storage.DeleteRoom(ctx, id); err != nil {
		return err
	}

	if hub := c.hubs.GetHub(id); hub != nil {
		hub.PublishPlayers([]model.Player{})
		hub.PublishRoom(nil)
	}
	return nil
}

// Subscribe registers a callback on the room document feed. The
// current state (nil when the room does not exist) is delivered first,
// then every subsequent change. The returned function unsubscribes.
func (c *Controller) Subscribe(ctx context.Context, id model.RoomID, cb watch.RoomCallback) (func(), error) {
	hub := c.hubs.GetOrCreateHub(id)

	if !hub.RoomSeeded() {
		room, err := c.storage.GetRoom(ctx, id)
		if err != nil && !errors.Is(err, model.ErrRoomNotFound) {
			return nil, err
		}
		hub.SeedRoom(room) // nil when not found
	}

	return hub.SubscribeRoom(cb), nil
}

// publish pushes the room's current stored state to its feed
func (c *Controller) publish(ctx context.Context, id model.RoomID) {
	hub := c.hubs.GetHub(id)
	if hub == nil {
		return
	}
	room, err := c.storage.GetRoom(ctx, id)
	if err != nil {
		c.logger.Warn("could not publish room snapshot",
			slog.String("room", string(id)),
			slog.Any("error", err))
		return
	}
	hub.PublishRoom(room)
}

// requireOwner gates owner-only operations. Rooms created before
// ownership tracking have an empty OwnerID and are open to any
// authenticated actor.
func requireOwner(room *model.Room, actor model.UserID) error {
	if room.OwnerID == "" {
		return nil
	}
	if room.OwnerID != actor {
		return model.ErrNotOwner
	}
	return nil
}
