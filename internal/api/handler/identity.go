package handler

import (
	"encoding/json"
	"net/http"

	"github.com/boardscore/boardscore/internal/api/middleware"
	"github.com/boardscore/boardscore/internal/api/request"
	"github.com/boardscore/boardscore/internal/api/response"
	"github.com/boardscore/boardscore/internal/services/identity"
)

// IdentityHandler handles sign-in endpoints
type IdentityHandler struct {
	identityService *identity.Service
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(identityService *identity.Service) *IdentityHandler {
	return &IdentityHandler{identityService: identityService}
}

// CreateGuest handles POST /api/v1/identity/guest
func (h *IdentityHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body; the guest gets an empty display name
		req = request.CreateGuestRequest{}
	}

	session, err := h.identityService.SignInGuest(r.Context(), req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(session))
}

// Register handles POST /api/v1/identity/register
func (h *IdentityHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" || req.Password == "" {
		WriteError(w, NewInvalidRequestError("username and password are required"))
		return
	}

	session, err := h.identityService.Register(r.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(session))
}

// Login handles POST /api/v1/identity/login
func (h *IdentityHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	session, err := h.identityService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(session))
}

// Logout handles POST /api/v1/identity/logout
func (h *IdentityHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.identityService.SignOut(middleware.GetToken(r.Context()))
	response.NoContent(w)
}

// GetMe handles GET /api/v1/identity/me
func (h *IdentityHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())
	response.JSON(w, http.StatusOK, response.IdentityFromModel(ident))
}
