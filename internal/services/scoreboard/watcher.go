package scoreboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/boardscore/boardscore/internal/history"
	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/sound"
)

// ErrLoadPlayers is the generic error surfaced to viewers when the
// players feed fails; the underlying cause goes to the log only.
var ErrLoadPlayers = errors.New("failed to load players")

// State is a watcher's view of the board at a point in time
type State struct {
	Players []model.Player
	Loading bool
	Err     error
}

// Listener receives the watcher state after every change
type Listener func(state State)

// Watcher follows one room's players and action feeds for a single
// viewer. It keeps the list in display order, detects leader changes,
// and pairs each board mutation with its history entry and sound cue.
//
// Side effects are viewer-local: each watcher fires its own sounds and
// appends to its own session history, matching what that viewer saw.
type Watcher struct {
	roomID  model.RoomID
	board   *Controller
	history *history.Log
	sounds  *sound.Manager
	logger  *slog.Logger

	// collator is only touched from the feed's dispatch goroutine
	collator *collate.Collator

	mu                 sync.Mutex
	players            []model.Player
	loading            bool
	err                error
	prevLeaderID       model.PlayerID
	initialLoad        bool
	listeners          map[int]Listener
	nextID             int
	unsubscribe        func()
	unsubscribeActions func()
}

// NewWatcher creates a Watcher for a room. Call Start to begin
// following the feed.
func NewWatcher(
	roomID model.RoomID,
	board *Controller,
	hist *history.Log,
	sounds *sound.Manager,
	logger *slog.Logger,
) *Watcher {
	return &Watcher{
		roomID:    roomID,
		board:     board,
		history:   hist,
		sounds:    sounds,
		logger:    logger.With(slog.String("component", "watcher"), slog.String("room", string(roomID))),
		collator:  collate.New(language.Und),
		loading:   true,
		listeners: make(map[int]Listener),
	}
}

// Start loads the room's history buffer and subscribes to the players
// and action feeds. The first snapshot ends the loading state without
// firing any leader-change effects.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	w.loading = true
	w.initialLoad = true
	w.mu.Unlock()

	w.history.SetRoom(w.roomID)

	unsubscribe, err := w.board.Subscribe(ctx, w.roomID, w.onSnapshot, w.onError)
	if err != nil {
		return err
	}
	unsubscribeActions := w.board.SubscribeActions(w.roomID, w.onAction)

	w.mu.Lock()
	w.unsubscribe = unsubscribe
	w.unsubscribeActions = unsubscribeActions
	w.mu.Unlock()
	return nil
}

// Stop unsubscribes from the players and action feeds
func (w *Watcher) Stop() {
	w.mu.Lock()
	unsubscribe := w.unsubscribe
	unsubscribeActions := w.unsubscribeActions
	w.unsubscribe = nil
	w.unsubscribeActions = nil
	w.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if unsubscribeActions != nil {
		unsubscribeActions()
	}
}

// State returns the current view of the board
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

// History returns the session history log this watcher appends to
func (w *Watcher) History() *history.Log {
	return w.history
}

// Listen registers a listener, delivers the current state to it and
// returns an unregister function
func (w *Watcher) Listen(fn Listener) func() {
	w.mu.Lock()
	w.nextID++
	id := w.nextID
	w.listeners[id] = fn
	state := w.stateLocked()
	w.mu.Unlock()

	fn(state)

	return func() {
		w.mu.Lock()
		delete(w.listeners, id)
		w.mu.Unlock()
	}
}

// onSnapshot applies a new players snapshot: sorts it into display
// order, runs leader-change detection, then notifies listeners.
func (w *Watcher) onSnapshot(players []model.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Score != players[j].Score {
			return players[i].Score > players[j].Score
		}
		return w.collator.CompareString(players[i].Name, players[j].Name) < 0
	})

	w.mu.Lock()
	if w.initialLoad {
		// No fanfare for whoever happens to be leading when we arrive
		w.initialLoad = false
		if len(players) > 0 {
			w.prevLeaderID = players[0].ID
		}
	} else if len(players) > 0 {
		leader := players[0]
		if leader.ID != w.prevLeaderID && leader.Score > 0 {
			w.mu.Unlock()
			w.history.LogLeaderChange(leader.ID, leader.Name)
			w.sounds.PlayFanfare()
			w.mu.Lock()
		}
		w.prevLeaderID = leader.ID
	}

	w.players = players
	w.loading = false
	w.err = nil
	w.mu.Unlock()

	w.notify()
}

// onError surfaces feed failures as a generic load error
func (w *Watcher) onError(err error) {
	w.logger.Error("players feed failed", slog.Any("error", err))

	w.mu.Lock()
	w.loading = false
	w.err = ErrLoadPlayers
	w.mu.Unlock()

	w.notify()
}

// onAction pairs a board mutation with its history entry and sound
// cue. A score change on a leader switch arrives after the fanfare's
// snapshot, so the coin or lose cue yields to the fanfare's
// suppression window.
func (w *Watcher) onAction(action model.BoardAction) {
	switch action.Kind {
	case model.BoardPlayerAdded:
		w.sounds.PlayNewPlayer()
		w.history.LogPlayerAdded(action.PlayerID, action.PlayerName)
	case model.BoardScoreChanged:
		if action.Amount >= 0 {
			w.sounds.PlayCoin()
		} else {
			w.sounds.PlayLose()
		}
		w.history.LogScoreChange(action.PlayerID, action.PlayerName, action.Amount)
	case model.BoardPlayerRemoved:
		w.sounds.PlayDelete()
		w.history.LogPlayerRemoved(action.PlayerID, action.PlayerName)
	case model.BoardScoresReset:
		w.sounds.PlayLose()
		w.history.LogScoresReset()
	case model.BoardCleared:
		w.sounds.PlayDelete()
		w.history.LogBoardCleared()
	}
}

func (w *Watcher) stateLocked() State {
	return State{
		Players: append([]model.Player(nil), w.players...),
		Loading: w.loading,
		Err:     w.err,
	}
}

func (w *Watcher) notify() {
	w.mu.Lock()
	listeners := make([]Listener, 0, len(w.listeners))
	for _, fn := range w.listeners {
		listeners = append(listeners, fn)
	}
	state := w.stateLocked()
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}
