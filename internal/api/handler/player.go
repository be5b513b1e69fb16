package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/boardscore/boardscore/internal/api/middleware"
	"github.com/boardscore/boardscore/internal/api/request"
	"github.com/boardscore/boardscore/internal/api/response"
	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/services/scoreboard"
)

// PlayerHandler handles scoreboard player endpoints
type PlayerHandler struct {
	boardController *scoreboard.Controller
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(boardController *scoreboard.Controller) *PlayerHandler {
	return &PlayerHandler{boardController: boardController}
}

func playerIDVar(r *http.Request) model.PlayerID {
	return model.PlayerID(mux.Vars(r)["player_id"])
}

// List handles GET /api/v1/rooms/{id}/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.boardController.ListPlayers(r.Context(), roomIDVar(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	out := make([]model.Player, len(players))
	for i, p := range players {
		out[i] = *p
	}
	response.JSON(w, http.StatusOK, response.PlayerListFromModel(out))
}

// Add handles POST /api/v1/rooms/{id}/players
func (h *PlayerHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req request.AddPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}

	id, err := h.boardController.AddPlayer(r.Context(), roomIDVar(r), model.CreatePlayerDTO{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]string{"id": string(id)})
}

// Remove handles DELETE /api/v1/rooms/{id}/players/{player_id}
func (h *PlayerHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.boardController.RemovePlayer(r.Context(), roomIDVar(r), playerIDVar(r)); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Rename handles PATCH /api/v1/rooms/{id}/players/{player_id}
func (h *PlayerHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req request.RenamePlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}

	if err := h.boardController.RenamePlayer(r.Context(), roomIDVar(r), playerIDVar(r), req.Name); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Score handles POST /api/v1/rooms/{id}/players/{player_id}/score
func (h *PlayerHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req request.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Amount == 0 {
		WriteError(w, NewInvalidRequestError("amount must be non-zero"))
		return
	}

	if err := h.boardController.IncrementScore(r.Context(), roomIDVar(r), playerIDVar(r), req.Amount); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Reset handles POST /api/v1/rooms/{id}/players/reset.
// Scores are zeroed for the players on the board at the time of the
// call; a player added while the reset runs keeps their score.
func (h *PlayerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	roomID := roomIDVar(r)

	players, err := h.boardController.ListPlayers(r.Context(), roomID)
	if err != nil {
		WriteError(w, err)
		return
	}

	ids := make([]model.PlayerID, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}

	if err := h.boardController.ResetAllScores(r.Context(), roomID, ids); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Clear handles POST /api/v1/rooms/{id}/players/clear.
// With ?keep_self=true the caller's linked player survives the sweep.
func (h *PlayerHandler) Clear(w http.ResponseWriter, r *http.Request) {
	var exclude model.UserID
	if r.URL.Query().Get("keep_self") == "true" {
		if ident := middleware.GetIdentity(r.Context()); ident != nil {
			exclude = ident.UserID
		}
	}

	if err := h.boardController.ClearBoard(r.Context(), roomIDVar(r), exclude); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
