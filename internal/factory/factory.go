// Package factory wires the application's services together
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/boardscore/boardscore/internal/dependencies/clock"
	"github.com/boardscore/boardscore/internal/dependencies/random"
	"github.com/boardscore/boardscore/internal/history"
	"github.com/boardscore/boardscore/internal/services/identity"
	"github.com/boardscore/boardscore/internal/services/room"
	"github.com/boardscore/boardscore/internal/services/scoreboard"
	"github.com/boardscore/boardscore/internal/services/user"
	"github.com/boardscore/boardscore/internal/storage"
	"github.com/boardscore/boardscore/internal/storage/memory"
	redisstorage "github.com/boardscore/boardscore/internal/storage/redis"
	"github.com/boardscore/boardscore/internal/watch"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	RoomController  *room.Controller
	BoardController *scoreboard.Controller
	UserService     *user.Service
	IdentityService *identity.Service
	HubManager      *watch.HubManager
	HistoryStore    history.Store
}

// Config holds configuration for the application factory
type Config struct {
	// IdentityConfig holds configuration for the identity service (optional)
	// If zero value, defaults to identity.DefaultConfig()
	IdentityConfig identity.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// HistoryPath is the file the session history store writes to.
	// If empty, history lives in memory only.
	HistoryPath string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	identityCfg := cfg.IdentityConfig
	if identityCfg.SessionDuration == 0 {
		identityCfg = identity.DefaultConfig()
	}

	var historyStore history.Store
	if cfg.HistoryPath != "" {
		historyStore = history.NewFileStore(cfg.HistoryPath)
	} else {
		historyStore = history.NewMemoryStore()
	}

	return newWithDependencies(store, clk, rnd, identityCfg, historyStore, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	identityCfg identity.Config,
	historyStore history.Store,
	logger *slog.Logger,
) *App {
	hubManager := watch.NewHubManager(logger)
	roomController := room.NewController(store, hubManager, clk, rnd, logger)
	boardController := scoreboard.NewController(store, hubManager, clk, logger)
	userService := user.NewService(store, clk, logger)
	identityService := identity.NewService(userService, clk, identityCfg, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		RoomController:  roomController,
		BoardController: boardController,
		UserService:     userService,
		IdentityService: identityService,
		HubManager:      hubManager,
		HistoryStore:    historyStore,
	}
}
