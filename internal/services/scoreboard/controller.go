package scoreboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/boardscore/boardscore/internal/dependencies/clock"
	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/storage"
	"github.com/boardscore/boardscore/internal/watch"
)

// Controller manages a room's players and the players feed.
//
// Mutations are fire-and-forget from the caller's point of view: there
// is no optimistic local state to roll back, because the feed snapshot
// is the single source of truth for displayed state.
type Controller struct {
	storage storage.Storage
	hubs    *watch.HubManager
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new scoreboard Controller
func NewController(
	storage storage.Storage,
	hubs *watch.HubManager,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		hubs:    hubs,
		clock:   clock,
		logger:  logger.With(slog.String("component", "scoreboard")),
	}
}

// AddPlayer adds a player with an initial score of zero and returns
// its id. Identity-linked uniqueness is the session layer's concern,
// not enforced here.
func (c *Controller) AddPlayer(ctx context.Context, roomID model.RoomID, dto model.CreatePlayerDTO) (model.PlayerID, error) {
	now := c.clock.Now()
	player := &model.Player{
		ID:             model.PlayerID(uuid.NewString()),
		Name:           strings.TrimSpace(dto.Name),
		Score:          0,
		LinkedIdentity: dto.LinkedIdentity,
		AvatarURL:      dto.AvatarURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := c.storage.SavePlayer(ctx, roomID, player); err != nil {
		return "", err
	}

	c.publish(ctx, roomID)
	c.publishAction(roomID, model.BoardAction{
		Kind:       model.BoardPlayerAdded,
		PlayerID:   player.ID,
		PlayerName: player.Name,
	})
	return player.ID, nil
}

// IncrementScore atomically adds delta to a player's score
func (c *Controller) IncrementScore(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, delta int) error {
	if err := c.storage.IncrementScore(ctx, roomID, playerID, delta, c.clock.Now()); err != nil {
		return err
	}
	c.publish(ctx, roomID)
	c.publishAction(roomID, model.BoardAction{
		Kind:       model.BoardScoreChanged,
		PlayerID:   playerID,
		PlayerName: c.playerName(ctx, roomID, playerID),
		Amount:     delta,
	})
	return nil
}

// SetScore sets a player's score to an absolute value. A player that
// was concurrently deleted is tolerated: the call logs a warning and
// becomes a no-op. Other failures propagate. No board action is
// emitted here; bulk callers publish their own aggregate action.
func (c *Controller) SetScore(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, value int) error {
	player, err := c.storage.GetPlayer(ctx, roomID, playerID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			c.logger.Warn("could not set score, player gone",
				slog.String("room", string(roomID)),
				slog.String("player", string(playerID)))
			return nil
		}
		return err
	}

	player.Score = value
	player.UpdatedAt = c.clock.Now()
	if err := c.storage.SavePlayer(ctx, roomID, player); err != nil {
		return err
	}

	c.publish(ctx, roomID)
	return nil
}

// RemovePlayer deletes a player from a room
func (c *Controller) RemovePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	// The name must be captured before the delete lands
	name := c.playerName(ctx, roomID, playerID)
	if err := c.storage.DeletePlayer(ctx, roomID, playerID); err != nil {
		return err
	}
	c.publish(ctx, roomID)
	c.publishAction(roomID, model.BoardAction{
		Kind:       model.BoardPlayerRemoved,
		PlayerID:   playerID,
		PlayerName: name,
	})
	return nil
}

// RenamePlayer updates a player's name, best effort: a concurrently
// deleted player is logged and skipped.
func (c *Controller) RenamePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, newName string) error {
	player, err := c.storage.GetPlayer(ctx, roomID, playerID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			c.logger.Warn("could not rename, player gone",
				slog.String("room", string(roomID)),
				slog.String("player", string(playerID)))
			return nil
		}
		return err
	}

	player.Name = strings.TrimSpace(newName)
	player.UpdatedAt = c.clock.Now()
	if err := c.storage.SavePlayer(ctx, roomID, player); err != nil {
		return err
	}

	c.publish(ctx, roomID)
	return nil
}

// ResetAllScores zeroes the given players in parallel.
//
// The id list comes from the caller's last-known state: a player added
// while the reset is in flight is not included. That race is accepted
// and documented, not silently fixed.
func (c *Controller) ResetAllScores(ctx context.Context, roomID model.RoomID, playerIDs []model.PlayerID) error {
	var wg sync.WaitGroup
	errs := make([]error, len(playerIDs))

	for i, id := range playerIDs {
		wg.Add(1)
		go func(i int, id model.PlayerID) {
			defer wg.Done()
			errs[i] = c.SetScore(ctx, roomID, id, 0)
		}(i, id)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}

	c.publishAction(roomID, model.BoardAction{Kind: model.BoardScoresReset})
	return nil
}

// ClearBoard removes every player in the room. When excludeIdentity is
// non-empty, the player linked to that identity is kept; a room owner
// uses this to empty a room without removing themselves.
func (c *Controller) ClearBoard(ctx context.Context, roomID model.RoomID, excludeIdentity model.UserID) error {
	players, err := c.storage.ListPlayers(ctx, roomID)
	if err != nil {
		return err
	}

	for _, p := range players {
		if excludeIdentity != "" && p.LinkedIdentity == excludeIdentity {
			continue
		}
		if err := c.storage.DeletePlayer(ctx, roomID, p.ID); err != nil {
			return err
		}
	}

	c.publish(ctx, roomID)
	c.publishAction(roomID, model.BoardAction{Kind: model.BoardCleared})
	return nil
}

// ListPlayers returns the room's players ordered by score descending.
// Ties are left to the consumer; the Watcher applies the full
// deterministic order.
func (c *Controller) ListPlayers(ctx context.Context, roomID model.RoomID) ([]*model.Player, error) {
	players, err := c.storage.ListPlayers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	return players, nil
}

// Subscribe registers callbacks on the room's players feed. The
// current snapshot is delivered first, then every subsequent change.
// The returned function unsubscribes.
func (c *Controller) Subscribe(ctx context.Context, roomID model.RoomID, onSnapshot watch.PlayersCallback, onError watch.ErrorCallback) (func(), error) {
	hub := c.hubs.GetOrCreateHub(roomID)

	if !hub.PlayersSeeded() {
		players, err := c.ListPlayers(ctx, roomID)
		if err != nil {
			return nil, err
		}
		hub.SeedPlayers(deref(players))
	}

	return hub.SubscribePlayers(onSnapshot, onError), nil
}

// SubscribeActions registers a callback for the room's board mutation
// events. The returned function unsubscribes.
func (c *Controller) SubscribeActions(roomID model.RoomID, cb watch.ActionCallback) func() {
	return c.hubs.GetOrCreateHub(roomID).SubscribeActions(cb)
}

// publish pushes the room's current player list to its feed
func (c *Controller) publish(ctx context.Context, roomID model.RoomID) {
	hub := c.hubs.GetHub(roomID)
	if hub == nil {
		return
	}
	players, err := c.ListPlayers(ctx, roomID)
	if err != nil {
		c.logger.Warn("could not publish players snapshot",
			slog.String("room", string(roomID)),
			slog.Any("error", err))
		hub.PublishPlayersError(err)
		return
	}
	hub.PublishPlayers(deref(players))
}

// publishAction fans a successful mutation out to the room's watchers
func (c *Controller) publishAction(roomID model.RoomID, action model.BoardAction) {
	if hub := c.hubs.GetHub(roomID); hub != nil {
		hub.PublishAction(action)
	}
}

// playerName resolves a player's current name, empty when the player
// is gone
func (c *Controller) playerName(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) string {
	player, err := c.storage.GetPlayer(ctx, roomID, playerID)
	if err != nil {
		return ""
	}
	return player.Name
}

func deref(players []*model.Player) []model.Player {
	out := make([]model.Player, len(players))
	for i, p := range players {
		out[i] = *p
	}
	return out
}
