package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	rooms       map[model.RoomID]*model.Room
	players     map[model.RoomID]map[model.PlayerID]*model.Player
	users       map[model.UserID]*model.User
	credentials map[string]*model.Credentials
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		rooms:       make(map[model.RoomID]*model.Room),
		players:     make(map[model.RoomID]map[model.PlayerID]*model.Player),
		users:       make(map[model.UserID]*model.User),
		credentials: make(map[string]*model.Credentials),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *room
	s.rooms[room.ID] = &cp
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		cp := *room
		rooms = append(rooms, &cp)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
	return rooms, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, roomID model.RoomID, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	roomPlayers, ok := s.players[roomID]
	if !ok {
		roomPlayers = make(map[model.PlayerID]*model.Player)
		s.players[roomID] = roomPlayers
	}
	cp := *player
	roomPlayers[player.ID] = &cp
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[roomID][playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *player
	return &cp, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players[roomID], playerID)
	return nil
}

func (s *Storage) ListPlayers(ctx context.Context, roomID model.RoomID) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*model.Player, 0, len(s.players[roomID]))
	for _, player := range s.players[roomID] {
		cp := *player
		players = append(players, &cp)
	}
	return players, nil
}

func (s *Storage) IncrementScore(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, delta int, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.players[roomID][playerID]
	if !ok {
		return model.ErrPlayerNotFound
	}
	// Mutated in place under the lock, so concurrent increments
	// cannot lose updates.
	player.Score += delta
	player.UpdatedAt = updatedAt
	return nil
}

func (s *Storage) DeletePlayersForRoom(ctx context.Context, roomID model.RoomID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, roomID)
	return nil
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *user
	cp.RecentRooms = append([]model.RecentRoom(nil), user.RecentRooms...)
	s.users[user.ID] = &cp
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *user
	cp.RecentRooms = append([]model.RecentRoom(nil), user.RecentRooms...)
	return &cp, nil
}

// Credential operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *creds
	s.credentials[creds.Username] = &cp
	return nil
}

func (s *Storage) GetCredentialsByUsername(ctx context.Context, username string) (*model.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.credentials[username]
	if !ok {
		return nil, model.ErrCredentialsNotFound
	}
	cp := *creds
	return &cp, nil
}
