package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/boardscore/boardscore/internal/api/middleware"
	"github.com/boardscore/boardscore/internal/dependencies/clock"
	"github.com/boardscore/boardscore/internal/history"
	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/services/room"
	"github.com/boardscore/boardscore/internal/services/scoreboard"
	"github.com/boardscore/boardscore/internal/services/session"
	"github.com/boardscore/boardscore/internal/services/user"
	"github.com/boardscore/boardscore/internal/sound"
)

const (
	eventBufferSize   = 64
	keepaliveInterval = 15 * time.Second
)

// EventsHandler streams a room to one viewer over SSE. Each
// connection runs its own visit state machine and board watcher, so
// session prompts, sound cues and history are scoped to that viewer.
type EventsHandler struct {
	roomController  *room.Controller
	boardController *scoreboard.Controller
	userService     *user.Service
	historyStore    history.Store
	clock           clock.Clock
	logger          *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(
	roomController *room.Controller,
	boardController *scoreboard.Controller,
	userService *user.Service,
	historyStore history.Store,
	clk clock.Clock,
	logger *slog.Logger,
) *EventsHandler {
	return &EventsHandler{
		roomController:  roomController,
		boardController: boardController,
		userService:     userService,
		historyStore:    historyStore,
		clock:           clk,
		logger:          logger.With(slog.String("component", "events")),
	}
}

// sseEvent is one named message on the stream
type sseEvent struct {
	name string
	data any
}

// cueOutput forwards sound cues to the stream instead of an audio
// device; the client decides what to do with them
type cueOutput struct {
	send func(ev sseEvent)
}

type cuePlayback struct{}

func (cuePlayback) Stop() {}

func (o cueOutput) Play(cue sound.Cue) sound.Playback {
	o.send(sseEvent{name: "sound", data: map[string]string{"cue": cue.Name}})
	return cuePlayback{}
}

// Stream handles GET /api/v1/rooms/{id}/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, NewInternalError())
		return
	}

	roomID := roomIDVar(r)
	ident := middleware.GetIdentity(r.Context())
	justCreated := r.URL.Query().Get("created") == "true"

	ctx := r.Context()
	events := make(chan sseEvent, eventBufferSize)
	send := func(ev sseEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		default:
			h.logger.Warn("event dropped - stream buffer full",
				slog.String("room", string(roomID)),
				slog.String("event", ev.name))
		}
	}

	sounds := sound.NewManager(cueOutput{send: send}, h.clock, h.logger)
	if r.URL.Query().Get("sound") == "off" {
		sounds.SetEnabled(false)
	}

	hist := history.NewLog(h.historyStore, h.clock, h.logger)

	watcher := scoreboard.NewWatcher(roomID, h.boardController, hist, sounds, h.logger)
	visit := session.NewController(roomID, h.roomController, h.boardController, h.userService, ident, justCreated, h.logger)

	visit.SetOnKicked(func() {
		send(sseEvent{name: "kicked", data: map[string]string{"room_id": string(roomID)}})
	})

	// A password presented up front unlocks the visit without a
	// round-trip. It is submitted from the state listener, once the
	// room has actually resolved to password_required; a wrong one
	// leaves the stream in password_required.
	password := r.URL.Query().Get("password")
	var passwordOnce sync.Once

	stopVisitListen := visit.Listen(func(s session.State) {
		data := map[string]any{"phase": string(s.Phase), "read_only": s.ReadOnly}
		if s.Room != nil {
			data["room"] = roomView(s.Room)
		}
		send(sseEvent{name: "session", data: data})

		if password != "" && s.Phase == session.PhasePasswordRequired {
			passwordOnce.Do(func() {
				if err := visit.SubmitPassword(ctx, password); err != nil {
					send(sseEvent{name: "password_rejected", data: map[string]string{"room_id": string(roomID)}})
				}
			})
		}
	})
	defer stopVisitListen()

	stopWatcherListen := watcher.Listen(func(s scoreboard.State) {
		if s.Err != nil {
			send(sseEvent{name: "players_error", data: map[string]string{"message": s.Err.Error()}})
			return
		}
		if s.Loading {
			return
		}
		visit.HandlePlayers(ctx, s.Players)
		send(sseEvent{name: "players", data: playersView(s.Players)})
	})
	defer stopWatcherListen()

	stopHistory := hist.Observe(func(entries []model.HistoryEntry) {
		send(sseEvent{name: "history", data: entries})
	})
	defer stopHistory()

	if err := visit.Start(ctx); err != nil {
		WriteError(w, err)
		return
	}
	defer visit.Stop()

	if err := watcher.Start(ctx); err != nil {
		visit.Stop()
		WriteError(w, err)
		return
	}
	defer watcher.Stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case ev := <-events:
			data, err := json.Marshal(ev.data)
			if err != nil {
				h.logger.Warn("could not marshal event",
					slog.String("event", ev.name),
					slog.Any("error", err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, data)
			flusher.Flush()
		}
	}
}

func roomView(r *model.Room) map[string]any {
	return map[string]any{
		"id":           string(r.ID),
		"name":         r.Name,
		"status":       string(r.Status),
		"has_password": r.HasPassword(),
	}
}

func playersView(players []model.Player) []map[string]any {
	out := make([]map[string]any, 0, len(players))
	for _, p := range players {
		out = append(out, map[string]any{
			"id":         string(p.ID),
			"name":       p.Name,
			"score":      p.Score,
			"avatar_url": p.AvatarURL,
		})
	}
	return out
}
