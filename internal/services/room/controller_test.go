package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/boardscore/boardscore/internal/dependencies/mocks"
	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/password"
	"github.com/boardscore/boardscore/internal/storage/memory"
	"github.com/boardscore/boardscore/internal/testutil"
	"github.com/boardscore/boardscore/internal/watch"
)

type ControllerSuite struct {
	suite.Suite

	storage    *memory.Storage
	hubs       *watch.HubManager
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.hubs = watch.NewHubManager(testutil.NopLogger())
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = NewController(s.storage, s.hubs, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) TestCreateWithGeneratedCode() {
	s.random.QueueString("ABC234")

	room, err := s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "Game Night"})
	s.Require().NoError(err)

	s.Equal(model.RoomID("ABC234"), room.ID)
	s.Equal("Game Night", room.Name)
	s.Equal(model.RoomStatusActive, room.Status)
	s.Equal(s.clock.Now(), room.CreatedAt)
	s.Nil(room.FinishedAt)
	s.False(room.HasPassword())

	stored, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(room, stored)
}

func (s *ControllerSuite) TestCreateRetriesOnCodeCollision() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, &model.Room{ID: "TAKEN2"}))
	s.random.QueueString("TAKEN2", "FREE42")

	room, err := s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "Second Try"})
	s.Require().NoError(err)
	s.Equal(model.RoomID("FREE42"), room.ID)
}

func (s *ControllerSuite) TestCreateWithCustomID() {
	room, err := s.controller.Create(s.ctx, model.CreateRoomDTO{
		Name:     "Trivia",
		CustomID: "Friday Game Night",
	})
	s.Require().NoError(err)
	s.Equal(model.RoomID("friday-game-night"), room.ID)
}

func (s *ControllerSuite) TestCreateCustomIDTaken() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, &model.Room{ID: "friday-game-night"}))

	_, err := s.controller.Create(s.ctx, model.CreateRoomDTO{
		Name:     "Trivia",
		CustomID: "Friday Game Night",
	})
	s.ErrorIs(err, model.ErrRoomIDTaken)
}

func (s *ControllerSuite) TestCreateCustomIDWithNoUsableCharacters() {
	_, err := s.controller.Create(s.ctx, model.CreateRoomDTO{
		Name:     "Trivia",
		CustomID: "!!!",
	})
	s.ErrorIs(err, model.ErrInvalidRoomID)

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *ControllerSuite) TestCreateTrimsName() {
	s.random.QueueString("ABC234")

	room, err := s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "  Game Night  "})
	s.Require().NoError(err)
	s.Equal("Game Night", room.Name)
}

func (s *ControllerSuite) TestCreateWithPassword() {
	s.random.QueueString("ABC234")

	room, err := s.controller.Create(s.ctx, model.CreateRoomDTO{
		Name:     "Secret Club",
		Password: "hunter2",
	})
	s.Require().NoError(err)
	s.True(room.HasPassword())
	s.NotEqual("hunter2", room.PasswordHash)
	s.True(password.Verify(room.PasswordHash, "hunter2"))
}

func (s *ControllerSuite) TestCreateWithOwner() {
	s.random.QueueString("ABC234")

	room, err := s.controller.Create(s.ctx, model.CreateRoomDTO{
		Name:    "Owned",
		OwnerID: "u_1",
	})
	s.Require().NoError(err)
	s.Equal(model.UserID("u_1"), room.OwnerID)
}

func (s *ControllerSuite) TestExistsAndGet() {
	exists, err := s.controller.Exists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.False(exists)

	s.random.QueueString("ABC234")
	_, err = s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "Game Night"})
	s.Require().NoError(err)

	exists, err = s.controller.Exists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.True(exists)

	room, err := s.controller.Get(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal("Game Night", room.Name)

	_, err = s.controller.Get(s.ctx, "missing")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestListNewestFirst() {
	s.random.QueueString("FIRST2", "SECND2")

	_, err := s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "first"})
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	_, err = s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "second"})
	s.Require().NoError(err)

	rooms, err := s.controller.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 2)
	s.Equal("second", rooms[0].Name)
	s.Equal("first", rooms[1].Name)
}

func (s *ControllerSuite) TestFinishAndReopen() {
	s.random.QueueString("ABC234")
	_, err := s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "Game Night", OwnerID: "u_1"})
	s.Require().NoError(err)

	s.clock.Advance(time.Hour)
	s.Require().NoError(s.controller.Finish(s.ctx, "ABC234", "u_1"))

	room, err := s.controller.Get(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.True(room.IsFinished())
	s.Require().NotNil(room.FinishedAt)
	s.Equal(s.clock.Now(), *room.FinishedAt)

	s.Require().NoError(s.controller.Reopen(s.ctx, "ABC234", "u_1"))

	room, err = s.controller.Get(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.False(room.IsFinished())
	s.Nil(room.FinishedAt)
}

func (s *ControllerSuite) TestFinishRequiresOwner() {
	s.random.QueueString("ABC234")
	_, err := s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "Owned", OwnerID: "u_1"})
	s.Require().NoError(err)

	err = s.controller.Finish(s.ctx, "ABC234", "u_2")
	s.ErrorIs(err, model.ErrNotOwner)
}

func (s *ControllerSuite) TestLegacyRoomOpenToAnyActor() {
	// Rooms created before ownership tracking have no owner
	s.Require().NoError(s.storage.SaveRoom(s.ctx, &model.Room{
		ID:     "legacy",
		Status: model.RoomStatusActive,
	}))

	s.NoError(s.controller.Finish(s.ctx, "legacy", "u_anyone"))
}

func (s *ControllerSuite) TestUpdatePassword() {
	s.random.QueueString("ABC234")
	_, err := s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "Game Night", OwnerID: "u_1"})
	s.Require().NoError(err)

	s.Require().NoError(s.controller.UpdatePassword(s.ctx, "ABC234", "u_1", "newpass"))
	s.NoError(s.controller.VerifyPassword(s.ctx, "ABC234", "newpass"))
	s.ErrorIs(s.controller.VerifyPassword(s.ctx, "ABC234", "wrong"), model.ErrWrongPassword)

	// Empty password removes protection
	s.Require().NoError(s.controller.UpdatePassword(s.ctx, "ABC234", "u_1", ""))
	room, err := s.controller.Get(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.False(room.HasPassword())
	s.NoError(s.controller.VerifyPassword(s.ctx, "ABC234", "anything"))
}

func (s *ControllerSuite) TestUpdatePasswordRequiresOwner() {
	s.random.QueueString("ABC234")
	_, err := s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "Owned", OwnerID: "u_1"})
	s.Require().NoError(err)

	err = s.controller.UpdatePassword(s.ctx, "ABC234", "u_2", "sneaky")
	s.ErrorIs(err, model.ErrNotOwner)
}

func (s *ControllerSuite) TestVerifyPasswordMissingRoom() {
	err := s.controller.VerifyPassword(s.ctx, "missing", "whatever")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestDeleteRemovesRoomAndPlayers() {
	s.random.QueueString("ABC234")
	_, err := s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "Game Night", OwnerID: "u_1"})
	s.Require().NoError(err)
	s.Require().NoError(s.storage.SavePlayer(s.ctx, "ABC234", &model.Player{ID: "p1", Name: "Alice"}))

	s.Require().NoError(s.controller.Delete(s.ctx, "ABC234", "u_1"))

	_, err = s.controller.Get(s.ctx, "ABC234")
	s.ErrorIs(err, model.ErrRoomNotFound)

	players, err := s.storage.ListPlayers(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *ControllerSuite) TestDeleteRequiresOwner() {
	s.random.QueueString("ABC234")
	_, err := s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "Owned", OwnerID: "u_1"})
	s.Require().NoError(err)

	err = s.controller.Delete(s.ctx, "ABC234", "u_2")
	s.ErrorIs(err, model.ErrNotOwner)

	_, err = s.controller.Get(s.ctx, "ABC234")
	s.NoError(err)
}

func (s *ControllerSuite) TestSubscribeDeliversInitialState() {
	s.random.QueueString("ABC234")
	_, err := s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "Game Night"})
	s.Require().NoError(err)

	received := make(chan *model.Room, 8)
	unsubscribe, err := s.controller.Subscribe(s.ctx, "ABC234", func(room *model.Room) {
		received <- room
	})
	s.Require().NoError(err)
	defer unsubscribe()

	select {
	case room := <-received:
		s.Require().NotNil(room)
		s.Equal("Game Night", room.Name)
	case <-time.After(2 * time.Second):
		s.Fail("no initial room snapshot received")
	}
}

func (s *ControllerSuite) TestSubscribeMissingRoomDeliversNil() {
	received := make(chan *model.Room, 8)
	unsubscribe, err := s.controller.Subscribe(s.ctx, "nowhere", func(room *model.Room) {
		received <- room
	})
	s.Require().NoError(err)
	defer unsubscribe()

	select {
	case room := <-received:
		s.Nil(room)
	case <-time.After(2 * time.Second):
		s.Fail("no initial snapshot received")
	}
}

func (s *ControllerSuite) TestSubscribeSeesUpdates() {
	s.random.QueueString("ABC234")
	_, err := s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "Game Night", OwnerID: "u_1"})
	s.Require().NoError(err)

	received := make(chan *model.Room, 8)
	unsubscribe, err := s.controller.Subscribe(s.ctx, "ABC234", func(room *model.Room) {
		received <- room
	})
	s.Require().NoError(err)
	defer unsubscribe()

	// Drain the initial snapshot
	select {
	case <-received:
	case <-time.After(2 * time.Second):
		s.FailNow("no initial snapshot received")
	}

	s.Require().NoError(s.controller.Finish(s.ctx, "ABC234", "u_1"))

	select {
	case room := <-received:
		s.Require().NotNil(room)
		s.True(room.IsFinished())
	case <-time.After(2 * time.Second):
		s.Fail("no update received after finish")
	}
}

func (s *ControllerSuite) TestDeleteNotifiesSubscribers() {
	s.random.QueueString("ABC234")
	_, err := s.controller.Create(s.ctx, model.CreateRoomDTO{Name: "Game Night", OwnerID: "u_1"})
	s.Require().NoError(err)

	received := make(chan *model.Room, 8)
	unsubscribe, err := s.controller.Subscribe(s.ctx, "ABC234", func(room *model.Room) {
		received <- room
	})
	s.Require().NoError(err)
	defer unsubscribe()

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		s.FailNow("no initial snapshot received")
	}

	s.Require().NoError(s.controller.Delete(s.ctx, "ABC234", "u_1"))

	select {
	case room := <-received:
		s.Nil(room)
	case <-time.After(2 * time.Second):
		s.Fail("no deletion snapshot received")
	}
}
