package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/boardscore/boardscore/internal/model"
)

type StorageSuite struct {
	suite.Suite

	storage *Storage
	ctx     context.Context
	now     time.Time
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) room(id model.RoomID, createdAt time.Time) *model.Room {
	return &model.Room{
		ID:        id,
		Name:      "Room " + string(id),
		Status:    model.RoomStatusActive,
		CreatedAt: createdAt,
	}
}

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := s.room("ABC234", s.now)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	got, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(room, got)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "missing")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestSaveRoomCopies() {
	room := s.room("ABC234", s.now)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	room.Name = "mutated after save"

	got, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal("Room ABC234", got.Name)
}

func (s *StorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("ABC234", s.now)))

	exists, err = s.storage.RoomExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestDeleteRoom() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("ABC234", s.now)))
	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "ABC234"))

	_, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.ErrorIs(err, model.ErrRoomNotFound)

	// Deleting a missing room is not an error
	s.NoError(s.storage.DeleteRoom(s.ctx, "ABC234"))
}

func (s *StorageSuite) TestListRoomsNewestFirst() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("oldest", s.now)))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("middle", s.now.Add(time.Minute))))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.room("newest", s.now.Add(2*time.Minute))))

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 3)
	s.Equal(model.RoomID("newest"), rooms[0].ID)
	s.Equal(model.RoomID("middle"), rooms[1].ID)
	s.Equal(model.RoomID("oldest"), rooms[2].ID)
}

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{
		ID:        "p1",
		Name:      "Alice",
		Score:     3,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, "ABC234", player))

	got, err := s.storage.GetPlayer(s.ctx, "ABC234", "p1")
	s.Require().NoError(err)
	s.Equal(player, got)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "ABC234", "missing")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestPlayersScopedToRoom() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, "room-a", &model.Player{ID: "p1", Name: "Alice"}))
	s.Require().NoError(s.storage.SavePlayer(s.ctx, "room-b", &model.Player{ID: "p1", Name: "Bob"}))

	got, err := s.storage.GetPlayer(s.ctx, "room-a", "p1")
	s.Require().NoError(err)
	s.Equal("Alice", got.Name)

	got, err = s.storage.GetPlayer(s.ctx, "room-b", "p1")
	s.Require().NoError(err)
	s.Equal("Bob", got.Name)
}

func (s *StorageSuite) TestListPlayers() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, "ABC234", &model.Player{ID: "p1", Name: "Alice"}))
	s.Require().NoError(s.storage.SavePlayer(s.ctx, "ABC234", &model.Player{ID: "p2", Name: "Bob"}))

	players, err := s.storage.ListPlayers(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Len(players, 2)

	players, err = s.storage.ListPlayers(s.ctx, "empty-room")
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *StorageSuite) TestDeletePlayer() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, "ABC234", &model.Player{ID: "p1", Name: "Alice"}))
	s.Require().NoError(s.storage.DeletePlayer(s.ctx, "ABC234", "p1"))

	_, err := s.storage.GetPlayer(s.ctx, "ABC234", "p1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestDeletePlayersForRoom() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, "ABC234", &model.Player{ID: "p1"}))
	s.Require().NoError(s.storage.SavePlayer(s.ctx, "ABC234", &model.Player{ID: "p2"}))
	s.Require().NoError(s.storage.SavePlayer(s.ctx, "other", &model.Player{ID: "p3"}))

	s.Require().NoError(s.storage.DeletePlayersForRoom(s.ctx, "ABC234"))

	players, err := s.storage.ListPlayers(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Empty(players)

	players, err = s.storage.ListPlayers(s.ctx, "other")
	s.Require().NoError(err)
	s.Len(players, 1)
}

func (s *StorageSuite) TestIncrementScore() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, "ABC234", &model.Player{ID: "p1", Score: 5, UpdatedAt: s.now}))

	later := s.now.Add(time.Minute)
	s.Require().NoError(s.storage.IncrementScore(s.ctx, "ABC234", "p1", 3, later))

	got, err := s.storage.GetPlayer(s.ctx, "ABC234", "p1")
	s.Require().NoError(err)
	s.Equal(8, got.Score)
	s.Equal(later, got.UpdatedAt)

	s.Require().NoError(s.storage.IncrementScore(s.ctx, "ABC234", "p1", -10, later))

	got, err = s.storage.GetPlayer(s.ctx, "ABC234", "p1")
	s.Require().NoError(err)
	s.Equal(-2, got.Score)
}

func (s *StorageSuite) TestIncrementScoreMissingPlayer() {
	err := s.storage.IncrementScore(s.ctx, "ABC234", "missing", 1, s.now)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestIncrementScoreConcurrent() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, "ABC234", &model.Player{ID: "p1"}))

	const workers = 20
	const perWorker = 50

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_ = s.storage.IncrementScore(s.ctx, "ABC234", "p1", 1, s.now)
			}
		}()
	}
	wg.Wait()

	got, err := s.storage.GetPlayer(s.ctx, "ABC234", "p1")
	s.Require().NoError(err)
	s.Equal(workers*perWorker, got.Score)
}

func (s *StorageSuite) TestSaveAndGetUser() {
	user := &model.User{
		ID:          "u_1",
		DisplayName: "Alice",
		Nickname:    "Alice",
		RecentRooms: []model.RecentRoom{
			{RoomID: "ABC234", Name: "Game Night", Role: model.RoleOwner, LastAccess: s.now},
		},
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))

	got, err := s.storage.GetUser(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Equal(user, got)

	// The stored recent rooms slice must not alias the caller's
	user.RecentRooms[0].Name = "mutated"
	got, err = s.storage.GetUser(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Equal("Game Night", got.RecentRooms[0].Name)
}

func (s *StorageSuite) TestGetUserNotFound() {
	_, err := s.storage.GetUser(s.ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *StorageSuite) TestSaveAndGetCredentials() {
	creds := &model.Credentials{
		UserID:       "u_1",
		Username:     "alice",
		PasswordHash: "$2a$10$fakehash",
		CreatedAt:    s.now,
		UpdatedAt:    s.now,
	}
	s.Require().NoError(s.storage.SaveCredentials(s.ctx, creds))

	got, err := s.storage.GetCredentialsByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(creds, got)
}

func (s *StorageSuite) TestGetCredentialsNotFound() {
	_, err := s.storage.GetCredentialsByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrCredentialsNotFound)
}
