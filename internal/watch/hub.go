// Package watch provides per-room fan-out of document snapshots.
//
// A Hub carries three feeds for one room: the room document, the
// room's player list, and board mutation events. Snapshot deliveries
// are full resolved state, not diffs; subscribers receive the current
// snapshot shortly after subscribing and again after every change, in
// the order the hub applied them. Actions are fire-and-forget
// broadcasts with no initial delivery. No ordering is guaranteed
// between the room and players feeds; actions for a mutation follow
// the players snapshot that mutation produced.
package watch

import (
	"log/slog"
	"sync"

	"github.com/boardscore/boardscore/internal/model"
)

// RoomCallback receives room snapshots; nil means the room does not exist
type RoomCallback func(room *model.Room)

// PlayersCallback receives full player-list snapshots
type PlayersCallback func(players []model.Player)

// ErrorCallback receives delivery failures on the players feed
type ErrorCallback func(err error)

// ActionCallback receives board mutation events. Unlike the snapshot
// feeds, actions are broadcast only: there is no initial delivery.
type ActionCallback func(action model.BoardAction)

const eventBufferSize = 256

type playerSub struct {
	onSnapshot PlayersCallback
	onError    ErrorCallback
}

// event is one unit of work for the hub's dispatch loop. A targeted
// event (only != 0) re-reads the latest snapshot at delivery time, so
// late subscribers always see current state.
type event struct {
	kind   string // "room", "players", "players_error", "action"
	err    error
	action model.BoardAction
	only   int // subscriber id for initial delivery; 0 broadcasts
}

// Hub manages snapshot subscribers for a single room
type Hub struct {
	roomID model.RoomID
	logger *slog.Logger

	mu         sync.RWMutex
	nextID     int
	roomSubs   map[int]RoomCallback
	playerSubs map[int]playerSub
	actionSubs map[int]ActionCallback

	room          *model.Room
	roomSeeded    bool
	players       []model.Player
	playersSeeded bool

	events chan event
	done   chan struct{}
}

// NewHub creates a new Hub for a room
func NewHub(roomID model.RoomID, logger *slog.Logger) *Hub {
	return &Hub{
		roomID:     roomID,
		logger:     logger.With(slog.String("room", string(roomID))),
		roomSubs:   make(map[int]RoomCallback),
		playerSubs: make(map[int]playerSub),
		actionSubs: make(map[int]ActionCallback),
		events:     make(chan event, eventBufferSize),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's dispatch loop
func (h *Hub) Run() {
	for {
		select {
		case ev := <-h.events:
			h.dispatch(ev)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) dispatch(ev event) {
	h.mu.RLock()
	var roomCbs []RoomCallback
	var playerCbs []playerSub
	var actionCbs []ActionCallback
	switch ev.kind {
	case "room":
		for id, cb := range h.roomSubs {
			if ev.only == 0 || ev.only == id {
				roomCbs = append(roomCbs, cb)
			}
		}
	case "players", "players_error":
		for id, sub := range h.playerSubs {
			if ev.only == 0 || ev.only == id {
				playerCbs = append(playerCbs, sub)
			}
		}
	case "action":
		for _, cb := range h.actionSubs {
			actionCbs = append(actionCbs, cb)
		}
	}
	room := h.room
	players := h.players
	h.mu.RUnlock()

	// Callbacks run outside the lock so they may call back into
	// services that publish to this hub.
	switch ev.kind {
	case "room":
		for _, cb := range roomCbs {
			cb(room)
		}
	case "players":
		snapshot := append([]model.Player(nil), players...)
		for _, sub := range playerCbs {
			sub.onSnapshot(snapshot)
		}
	case "players_error":
		for _, sub := range playerCbs {
			if sub.onError != nil {
				sub.onError(ev.err)
			}
		}
	case "action":
		for _, cb := range actionCbs {
			cb(ev.action)
		}
	}
}

// send enqueues an event without blocking the caller
func (h *Hub) send(ev event) {
	select {
	case h.events <- ev:
	case <-h.done:
	default:
		h.logger.Warn("watch event dropped - hub buffer full")
	}
}

// SeedRoom records the initial room snapshot if none has been
// published yet. Pass nil for a nonexistent room.
func (h *Hub) SeedRoom(room *model.Room) {
	h.mu.Lock()
	if !h.roomSeeded {
		h.room = room
		h.roomSeeded = true
	}
	h.mu.Unlock()
}

// SeedPlayers records the initial players snapshot if none has been
// published yet
func (h *Hub) SeedPlayers(players []model.Player) {
	h.mu.Lock()
	if !h.playersSeeded {
		h.players = players
		h.playersSeeded = true
	}
	h.mu.Unlock()
}

// RoomSeeded reports whether the room feed has a snapshot
func (h *Hub) RoomSeeded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.roomSeeded
}

// PlayersSeeded reports whether the players feed has a snapshot
func (h *Hub) PlayersSeeded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.playersSeeded
}

// SubscribeRoom registers a callback for room snapshots. The current
// snapshot is delivered first. The returned function unsubscribes.
func (h *Hub) SubscribeRoom(cb RoomCallback) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.roomSubs[id] = cb
	seeded := h.roomSeeded
	h.mu.Unlock()

	if seeded {
		h.send(event{kind: "room", only: id})
	}

	return func() {
		h.mu.Lock()
		delete(h.roomSubs, id)
		h.mu.Unlock()
	}
}

// SubscribePlayers registers callbacks for player-list snapshots and
// delivery errors. The current snapshot is delivered first. The
// returned function unsubscribes.
func (h *Hub) SubscribePlayers(onSnapshot PlayersCallback, onError ErrorCallback) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.playerSubs[id] = playerSub{onSnapshot: onSnapshot, onError: onError}
	seeded := h.playersSeeded
	h.mu.Unlock()

	if seeded {
		h.send(event{kind: "players", only: id})
	}

	return func() {
		h.mu.Lock()
		delete(h.playerSubs, id)
		h.mu.Unlock()
	}
}

// SubscribeActions registers a callback for board mutation events.
// The returned function unsubscribes.
func (h *Hub) SubscribeActions(cb ActionCallback) func() {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	h.actionSubs[id] = cb
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.actionSubs, id)
		h.mu.Unlock()
	}
}

// PublishRoom records and fans out a new room snapshot.
// Pass nil when the room has been deleted.
func (h *Hub) PublishRoom(room *model.Room) {
	h.mu.Lock()
	h.room = room
	h.roomSeeded = true
	h.mu.Unlock()
	h.send(event{kind: "room"})
}

// PublishPlayers records and fans out a new players snapshot
func (h *Hub) PublishPlayers(players []model.Player) {
	h.mu.Lock()
	h.players = players
	h.playersSeeded = true
	h.mu.Unlock()
	h.send(event{kind: "players"})
}

// PublishPlayersError fans out a delivery failure on the players feed
func (h *Hub) PublishPlayersError(err error) {
	h.send(event{kind: "players_error", err: err})
}

// PublishAction fans out a board mutation event
func (h *Hub) PublishAction(action model.BoardAction) {
	h.send(event{kind: "action", action: action})
}

// SubscriberCount returns the number of registered subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.roomSubs) + len(h.playerSubs) + len(h.actionSubs)
}

// Close shuts down the hub's dispatch loop
func (h *Hub) Close() {
	close(h.done)
}

// HubManager manages hubs for all rooms
type HubManager struct {
	hubs   map[model.RoomID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.RoomID]*Hub),
		logger: logger.With(slog.String("component", "watch")),
	}
}

// GetOrCreateHub returns the hub for a room, creating one if needed
func (m *HubManager) GetOrCreateHub(roomID model.RoomID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomID]; ok {
		return hub
	}

	hub := NewHub(roomID, m.logger)
	m.hubs[roomID] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a room, or nil if none exists
func (m *HubManager) GetHub(roomID model.RoomID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[roomID]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(roomID model.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomID]; ok {
		hub.Close()
		delete(m.hubs, roomID)
		m.logger.Info("watch hub removed", slog.String("room", string(roomID)))
	}
}

// CleanupEmptyHubs removes hubs with no subscribers
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, hub := range m.hubs {
		if hub.SubscriberCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("watch empty hubs cleaned up", slog.Int("removed", removed))
	}
}
