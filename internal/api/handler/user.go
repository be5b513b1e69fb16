package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/boardscore/boardscore/internal/api/middleware"
	"github.com/boardscore/boardscore/internal/api/request"
	"github.com/boardscore/boardscore/internal/api/response"
	"github.com/boardscore/boardscore/internal/roomid"
	"github.com/boardscore/boardscore/internal/services/user"
)

// UserHandler handles profile and recent-rooms endpoints
type UserHandler struct {
	userService *user.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *user.Service) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile handles GET /api/v1/users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())

	u, err := h.userService.Get(r.Context(), ident.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(u))
}

// UpdateNickname handles PATCH /api/v1/users/me/nickname
func (h *UserHandler) UpdateNickname(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())

	var req request.UpdateNicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Nickname == "" {
		WriteError(w, NewInvalidRequestError("nickname is required"))
		return
	}

	u, err := h.userService.SetNickname(r.Context(), ident.UserID, req.Nickname)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UserFromModel(u))
}

// RecentRooms handles GET /api/v1/users/me/recent-rooms
func (h *UserHandler) RecentRooms(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())

	recent, err := h.userService.RecentRooms(r.Context(), ident.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"recent_rooms": response.RecentRoomsFromModel(recent),
	})
}

// RemoveRecentRoom handles DELETE /api/v1/users/me/recent-rooms/{id}
func (h *UserHandler) RemoveRecentRoom(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())
	roomID := roomid.Normalize(mux.Vars(r)["id"])

	if err := h.userService.RemoveRecentRoom(r.Context(), ident.UserID, roomID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}

// ClearRecentRooms handles DELETE /api/v1/users/me/recent-rooms
func (h *UserHandler) ClearRecentRooms(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())

	if err := h.userService.ClearRecentRooms(r.Context(), ident.UserID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
