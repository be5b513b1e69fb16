package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/boardscore/boardscore/internal/api/handler"
	"github.com/boardscore/boardscore/internal/api/middleware"
	"github.com/boardscore/boardscore/internal/dependencies/clock"
	"github.com/boardscore/boardscore/internal/history"
	"github.com/boardscore/boardscore/internal/services/identity"
	"github.com/boardscore/boardscore/internal/services/room"
	"github.com/boardscore/boardscore/internal/services/scoreboard"
	"github.com/boardscore/boardscore/internal/services/user"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	Clock           clock.Clock
	IdentityService *identity.Service
	RoomController  *room.Controller
	BoardController *scoreboard.Controller
	UserService     *user.Service
	HistoryStore    history.Store
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	identityHandler := handler.NewIdentityHandler(cfg.IdentityService)
	roomHandler := handler.NewRoomHandler(cfg.RoomController)
	playerHandler := handler.NewPlayerHandler(cfg.BoardController)
	userHandler := handler.NewUserHandler(cfg.UserService)
	eventsHandler := handler.NewEventsHandler(
		cfg.RoomController,
		cfg.BoardController,
		cfg.UserService,
		cfg.HistoryStore,
		cfg.Clock,
		cfg.Logger,
	)

	authMiddleware := middleware.Auth(cfg.IdentityService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.IdentityService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Sign-in routes (no auth required to obtain a session)
	api.HandleFunc("/identity/guest", identityHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/identity/register", identityHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/identity/login", identityHandler.Login).Methods(http.MethodPost)

	// Protected identity routes
	identityProtected := api.PathPrefix("/identity").Subrouter()
	identityProtected.Use(authMiddleware)
	identityProtected.HandleFunc("/logout", identityHandler.Logout).Methods(http.MethodPost)
	identityProtected.HandleFunc("/me", identityHandler.GetMe).Methods(http.MethodGet)

	// The event stream resolves sign-in itself; anonymous viewers get
	// a login_required session state rather than a 401
	events := api.PathPrefix("/rooms/{id}/events").Subrouter()
	events.Use(optionalAuthMiddleware)
	events.HandleFunc("", eventsHandler.Stream).Methods(http.MethodGet)

	// Room routes (all require auth)
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(authMiddleware)
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("", roomHandler.List).Methods(http.MethodGet)
	rooms.HandleFunc("/{id}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{id}", roomHandler.Delete).Methods(http.MethodDelete)
	rooms.HandleFunc("/{id}/verify-password", roomHandler.VerifyPassword).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/finish", roomHandler.Finish).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/reopen", roomHandler.Reopen).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/password", roomHandler.UpdatePassword).Methods(http.MethodPut)

	// Player routes; fixed paths before the {player_id} wildcard
	rooms.HandleFunc("/{id}/players", playerHandler.List).Methods(http.MethodGet)
	rooms.HandleFunc("/{id}/players", playerHandler.Add).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/players/reset", playerHandler.Reset).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/players/clear", playerHandler.Clear).Methods(http.MethodPost)
	rooms.HandleFunc("/{id}/players/{player_id}", playerHandler.Remove).Methods(http.MethodDelete)
	rooms.HandleFunc("/{id}/players/{player_id}", playerHandler.Rename).Methods(http.MethodPatch)
	rooms.HandleFunc("/{id}/players/{player_id}/score", playerHandler.Score).Methods(http.MethodPost)

	// User routes (all require auth)
	users := api.PathPrefix("/users").Subrouter()
	users.Use(authMiddleware)
	users.HandleFunc("/me", userHandler.GetProfile).Methods(http.MethodGet)
	users.HandleFunc("/me/nickname", userHandler.UpdateNickname).Methods(http.MethodPatch)
	users.HandleFunc("/me/recent-rooms", userHandler.RecentRooms).Methods(http.MethodGet)
	users.HandleFunc("/me/recent-rooms", userHandler.ClearRecentRooms).Methods(http.MethodDelete)
	users.HandleFunc("/me/recent-rooms/{id}", userHandler.RemoveRecentRoom).Methods(http.MethodDelete)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
