// Package session drives one viewer's visit to a room: resolving the
// room, gating on sign-in and password, joining the board, and
// noticing when the viewer's player has been removed by someone else.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/services/identity"
	"github.com/boardscore/boardscore/internal/services/room"
	"github.com/boardscore/boardscore/internal/services/scoreboard"
	"github.com/boardscore/boardscore/internal/services/user"
)

// Phase is where the visit currently stands
type Phase string

const (
	// PhaseResolving means the room is still being looked up
	PhaseResolving Phase = "resolving"
	// PhaseNotFound means the room does not exist (or was deleted)
	PhaseNotFound Phase = "not_found"
	// PhaseLoginRequired means the viewer must sign in first
	PhaseLoginRequired Phase = "login_required"
	// PhasePasswordRequired means the room is protected and the viewer
	// has not presented the password yet
	PhasePasswordRequired Phase = "password_required"
	// PhaseReady means the viewer may see the board
	PhaseReady Phase = "ready"
)

// State is the visit's current standing
type State struct {
	Phase Phase
	Room  *model.Room
	// ReadOnly is set while the room is finished; the board stays
	// visible but mutations are disabled
	ReadOnly bool
}

// Controller manages a single visit to a single room. It is not
// shared between viewers; the API layer creates one per connection.
type Controller struct {
	roomID   model.RoomID
	rooms    *room.Controller
	board    *scoreboard.Controller
	users    *user.Service
	identity *identity.Identity
	// justCreated marks the visit immediately following room creation;
	// the creator skips the password prompt of their own room
	justCreated bool
	logger      *slog.Logger

	mu         sync.Mutex
	state      State
	authorized bool
	// joinedThisVisit guards auto-join so each visit adds or renames a
	// player at most once
	joinedThisVisit bool
	// wasPlayer records that this viewer's player has been seen on the
	// board; its later absence means someone removed them
	wasPlayer bool
	// lastPlayers holds the most recent players snapshot, including
	// ones delivered before the visit unlocked; it is replayed when the
	// visit reaches Ready so the auto-join is not lost
	lastPlayers []model.Player
	seenPlayers bool
	kicked      bool
	onKicked    func()
	listeners   map[int]func(State)
	nextID      int
	unsubscribe func()
}

// NewController creates a Controller for one viewer's visit.
// ident may be nil for an anonymous viewer, who is asked to sign in.
func NewController(
	roomID model.RoomID,
	rooms *room.Controller,
	board *scoreboard.Controller,
	users *user.Service,
	ident *identity.Identity,
	justCreated bool,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		roomID:      roomID,
		rooms:       rooms,
		board:       board,
		users:       users,
		identity:    ident,
		justCreated: justCreated,
		logger: logger.With(
			slog.String("component", "session"),
			slog.String("room", string(roomID)),
		),
		state:     State{Phase: PhaseResolving},
		listeners: make(map[int]func(State)),
	}
}

// Start subscribes to the room feed and begins resolving the visit
func (c *Controller) Start(ctx context.Context) error {
	unsubscribe, err := c.rooms.Subscribe(ctx, c.roomID, func(r *model.Room) {
		c.onRoom(ctx, r)
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
	return nil
}

// Stop unsubscribes from the room feed
func (c *Controller) Stop() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// State returns the visit's current standing
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Listen registers a listener, delivers the current state to it and
// returns an unregister function
func (c *Controller) Listen(fn func(State)) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners[id] = fn
	state := c.state
	c.mu.Unlock()

	fn(state)

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// SetOnKicked registers the forced-removal signal. It fires at most
// once, when this viewer's player disappears from the board without
// the viewer having removed it.
func (c *Controller) SetOnKicked(fn func()) {
	c.mu.Lock()
	c.onKicked = fn
	c.mu.Unlock()
}

// onRoom applies a room snapshot to the visit state machine
func (c *Controller) onRoom(ctx context.Context, r *model.Room) {
	c.mu.Lock()
	wasReady := c.state.Phase == PhaseReady

	switch {
	case r == nil:
		c.state = State{Phase: PhaseNotFound}
		c.authorized = false

	case c.identity == nil:
		c.state = State{Phase: PhaseLoginRequired, Room: r}

	case c.authorized:
		// A password added mid-visit does not eject viewers already in
		c.state = State{Phase: PhaseReady, Room: r, ReadOnly: r.IsFinished()}

	case !r.HasPassword() || r.OwnerID == c.identity.UserID || c.justCreated:
		c.authorized = true
		c.state = State{Phase: PhaseReady, Room: r, ReadOnly: r.IsFinished()}
		c.recordVisitLocked(ctx, r)

	default:
		c.state = State{Phase: PhasePasswordRequired, Room: r}
	}

	replay := !wasReady && c.state.Phase == PhaseReady && c.seenPlayers
	players := c.lastPlayers
	c.mu.Unlock()

	c.notify()
	if replay {
		// A players snapshot delivered before the visit unlocked was
		// skipped; apply it now so the viewer joins the board
		c.HandlePlayers(ctx, players)
	}
}

// SubmitPassword checks the candidate against the room password.
// ErrWrongPassword comes back for an inline retry; success unlocks the
// visit and records it in the viewer's recent rooms.
func (c *Controller) SubmitPassword(ctx context.Context, candidate string) error {
	if err := c.rooms.VerifyPassword(ctx, c.roomID, candidate); err != nil {
		return err
	}

	c.mu.Lock()
	c.authorized = true
	if r := c.state.Room; r != nil {
		c.state = State{Phase: PhaseReady, Room: r, ReadOnly: r.IsFinished()}
		c.recordVisitLocked(ctx, r)
	}
	replay := c.state.Phase == PhaseReady && c.seenPlayers
	players := c.lastPlayers
	c.mu.Unlock()

	c.notify()
	if replay {
		// The players feed already delivered its snapshot while the
		// visit was locked; apply it now so the viewer joins the board
		c.HandlePlayers(ctx, players)
	}
	return nil
}

// HandlePlayers reacts to each players snapshot: joins the board once
// per visit and detects forced removal. Wire it to the watcher's feed.
func (c *Controller) HandlePlayers(ctx context.Context, players []model.Player) {
	c.mu.Lock()
	c.lastPlayers = players
	c.seenPlayers = true

	if c.identity == nil || !c.authorized || c.state.Phase != PhaseReady {
		c.mu.Unlock()
		return
	}

	var mine *model.Player
	for i := range players {
		if players[i].LinkedIdentity == c.identity.UserID {
			mine = &players[i]
			break
		}
	}

	isOwner := c.state.Room != nil && c.state.Room.OwnerID == c.identity.UserID
	readOnly := c.state.ReadOnly

	switch {
	case mine != nil:
		c.wasPlayer = true
		if !c.joinedThisVisit {
			c.joinedThisVisit = true
			if mine.Name != c.identity.Nickname {
				id := mine.ID
				c.mu.Unlock()
				// Best effort; the board keeps the old name on failure
				if err := c.board.RenamePlayer(ctx, c.roomID, id, c.identity.Nickname); err != nil {
					c.logger.Warn("could not sync player name", slog.Any("error", err))
				}
				return
			}
		}

	case !c.joinedThisVisit && !readOnly:
		c.joinedThisVisit = true
		ident := *c.identity
		c.mu.Unlock()
		_, err := c.board.AddPlayer(ctx, c.roomID, model.CreatePlayerDTO{
			Name:           ident.Nickname,
			LinkedIdentity: ident.UserID,
			AvatarURL:      ident.AvatarURL,
		})
		if err != nil {
			c.logger.Warn("could not join board", slog.Any("error", err))
		}
		return

	case c.wasPlayer && !isOwner && !c.kicked:
		c.kicked = true
		fn := c.onKicked
		c.mu.Unlock()
		if fn != nil {
			fn()
		}
		return
	}

	c.mu.Unlock()
}

// CanManage reports whether this viewer may use owner controls.
// Rooms created before ownership tracking have no owner and are
// manageable by any signed-in viewer.
func (c *Controller) CanManage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.identity == nil || !c.authorized || c.state.Room == nil {
		return false
	}
	return c.state.Room.OwnerID == "" || c.state.Room.OwnerID == c.identity.UserID
}

// recordVisitLocked adds the room to the viewer's recent list.
// Failures are logged, not surfaced; the visit proceeds regardless.
func (c *Controller) recordVisitLocked(ctx context.Context, r *model.Room) {
	role := model.RolePlayer
	if r.OwnerID == c.identity.UserID {
		role = model.RoleOwner
	}

	if err := c.users.AddRecentRoom(ctx, c.identity.UserID, model.RecentRoom{
		RoomID:      r.ID,
		Name:        r.Name,
		Role:        role,
		HasPassword: r.HasPassword(),
	}); err != nil {
		c.logger.Warn("could not record recent room", slog.Any("error", err))
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	listeners := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	state := c.state
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}
