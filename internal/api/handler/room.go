package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/boardscore/boardscore/internal/api/middleware"
	"github.com/boardscore/boardscore/internal/api/request"
	"github.com/boardscore/boardscore/internal/api/response"
	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/roomid"
	"github.com/boardscore/boardscore/internal/services/room"
)

// RoomHandler handles room-related endpoints
type RoomHandler struct {
	roomController *room.Controller
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomController *room.Controller) *RoomHandler {
	return &RoomHandler{roomController: roomController}
}

// roomIDVar normalizes the {id} path variable, so both the share-code
// and slug spellings of a room id resolve to the same room
func roomIDVar(r *http.Request) model.RoomID {
	return roomid.Normalize(mux.Vars(r)["id"])
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())

	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}

	created, err := h.roomController.Create(r.Context(), model.CreateRoomDTO{
		Name:     req.Name,
		CustomID: req.CustomID,
		Password: req.Password,
		OwnerID:  ident.UserID,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromModel(created))
}

// Get handles GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.roomController.Get(r.Context(), roomIDVar(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(found))
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomController.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomListFromModel(rooms))
}

// VerifyPassword handles POST /api/v1/rooms/{id}/verify-password
func (h *RoomHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.roomController.VerifyPassword(r.Context(), roomIDVar(r), req.Password); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Finish handles POST /api/v1/rooms/{id}/finish
func (h *RoomHandler) Finish(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())

	if err := h.roomController.Finish(r.Context(), roomIDVar(r), ident.UserID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Reopen handles POST /api/v1/rooms/{id}/reopen
func (h *RoomHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())

	if err := h.roomController.Reopen(r.Context(), roomIDVar(r), ident.UserID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// UpdatePassword handles PUT /api/v1/rooms/{id}/password
func (h *RoomHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())

	var req request.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if err := h.roomController.UpdatePassword(r.Context(), roomIDVar(r), ident.UserID, req.Password); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// Delete handles DELETE /api/v1/rooms/{id}
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())

	if err := h.roomController.Delete(r.Context(), roomIDVar(r), ident.UserID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
