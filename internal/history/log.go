// Package history keeps a bounded, newest-first log of notable events
// in a room. The log is session-scoped: it persists through a Store so
// a reconnect within the same session picks it up, but it is not part
// of the room's durable state.
package history

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/boardscore/boardscore/internal/dependencies/clock"
	"github.com/boardscore/boardscore/internal/model"
)

// MaxEntries bounds the per-room buffer; the oldest entries fall off
const MaxEntries = 50

// Observer receives the full entry list after every change
type Observer func(entries []model.HistoryEntry)

// Log is the history buffer for one room
type Log struct {
	store  Store
	clock  clock.Clock
	logger *slog.Logger

	mu        sync.Mutex
	roomID    model.RoomID
	entries   []model.HistoryEntry
	observers map[int]Observer
	nextID    int
}

// NewLog creates a Log backed by the given store
func NewLog(store Store, clk clock.Clock, logger *slog.Logger) *Log {
	return &Log{
		store:     store,
		clock:     clk,
		logger:    logger.With(slog.String("component", "history")),
		observers: make(map[int]Observer),
	}
}

// SetRoom points the log at a room and loads any stored buffer for it.
// Switching rooms replaces the in-memory entries.
func (l *Log) SetRoom(roomID model.RoomID) {
	l.mu.Lock()
	l.roomID = roomID
	entries, err := l.store.Load(roomID)
	if err != nil {
		l.logger.Warn("could not load history",
			slog.String("room", string(roomID)),
			slog.Any("error", err))
		entries = nil
	}
	l.entries = entries
	l.mu.Unlock()

	l.notify()
}

// Entries returns a snapshot of the log, newest first
func (l *Log) Entries() []model.HistoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.HistoryEntry(nil), l.entries...)
}

// Observe registers an observer, delivers the current entries to it and
// returns an unregister function
func (l *Log) Observe(obs Observer) func() {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.observers[id] = obs
	entries := append([]model.HistoryEntry(nil), l.entries...)
	l.mu.Unlock()

	obs(entries)

	return func() {
		l.mu.Lock()
		delete(l.observers, id)
		l.mu.Unlock()
	}
}

// Clear empties the buffer and persists the empty state
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.persistLocked()
	l.mu.Unlock()

	l.notify()
}

// LogScoreChange records a score increment or decrement
func (l *Log) LogScoreChange(playerID model.PlayerID, playerName string, amount int) {
	action := model.ActionScoreUp
	if amount < 0 {
		action = model.ActionScoreDown
	}
	l.append(model.HistoryEntry{
		PlayerID:   playerID,
		PlayerName: playerName,
		Action:     action,
		Amount:     amount,
	})
}

// LogPlayerAdded records a new player joining the board
func (l *Log) LogPlayerAdded(playerID model.PlayerID, playerName string) {
	l.append(model.HistoryEntry{
		PlayerID:   playerID,
		PlayerName: playerName,
		Action:     model.ActionPlayerAdded,
	})
}

// LogPlayerRemoved records a player leaving the board
func (l *Log) LogPlayerRemoved(playerID model.PlayerID, playerName string) {
	l.append(model.HistoryEntry{
		PlayerID:   playerID,
		PlayerName: playerName,
		Action:     model.ActionPlayerRemoved,
	})
}

// LogLeaderChange records a new player taking the top of the board
func (l *Log) LogLeaderChange(playerID model.PlayerID, playerName string) {
	l.append(model.HistoryEntry{
		PlayerID:   playerID,
		PlayerName: playerName,
		Action:     model.ActionLeaderChange,
	})
}

// LogScoresReset records all scores being zeroed
func (l *Log) LogScoresReset() {
	l.append(model.HistoryEntry{Action: model.ActionScoresReset})
}

// LogBoardCleared records all players being removed
func (l *Log) LogBoardCleared() {
	l.append(model.HistoryEntry{Action: model.ActionBoardCleared})
}

// append prepends an entry, trims to MaxEntries, persists and notifies
func (l *Log) append(entry model.HistoryEntry) {
	entry.ID = uuid.NewString()
	entry.Timestamp = l.clock.Now()

	l.mu.Lock()
	l.entries = append([]model.HistoryEntry{entry}, l.entries...)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
	l.persistLocked()
	l.mu.Unlock()

	l.notify()
}

func (l *Log) persistLocked() {
	if l.roomID == "" {
		return
	}
	if err := l.store.Save(l.roomID, l.entries); err != nil {
		l.logger.Warn("could not persist history",
			slog.String("room", string(l.roomID)),
			slog.Any("error", err))
	}
}

func (l *Log) notify() {
	l.mu.Lock()
	observers := make([]Observer, 0, len(l.observers))
	for _, obs := range l.observers {
		observers = append(observers, obs)
	}
	entries := append([]model.HistoryEntry(nil), l.entries...)
	l.mu.Unlock()

	for _, obs := range observers {
		obs(entries)
	}
}
