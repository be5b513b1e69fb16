package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/boardscore/boardscore/internal/dependencies/mocks"
	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/services/identity"
	"github.com/boardscore/boardscore/internal/services/room"
	"github.com/boardscore/boardscore/internal/services/scoreboard"
	"github.com/boardscore/boardscore/internal/services/user"
	"github.com/boardscore/boardscore/internal/storage/memory"
	"github.com/boardscore/boardscore/internal/testutil"
	"github.com/boardscore/boardscore/internal/watch"
)

const waitFor = 2 * time.Second
const tick = 10 * time.Millisecond

type ControllerSuite struct {
	suite.Suite

	storage *memory.Storage
	hubs    *watch.HubManager
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	rooms   *room.Controller
	board   *scoreboard.Controller
	users   *user.Service
	ctx     context.Context

	controller *Controller
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.hubs = watch.NewHubManager(testutil.NopLogger())
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.rooms = room.NewController(s.storage, s.hubs, s.clock, s.random, testutil.NopLogger())
	s.board = scoreboard.NewController(s.storage, s.hubs, s.clock, testutil.NopLogger())
	s.users = user.NewService(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) TearDownTest() {
	if s.controller != nil {
		s.controller.Stop()
	}
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

// viewer creates a signed-in identity with a stored profile
func (s *ControllerSuite) viewer(id model.UserID, nickname string) *identity.Identity {
	_, err := s.users.Upsert(s.ctx, id, user.Profile{DisplayName: nickname})
	s.Require().NoError(err)
	return &identity.Identity{
		UserID:      id,
		DisplayName: nickname,
		Nickname:    nickname,
	}
}

func (s *ControllerSuite) createRoom(dto model.CreateRoomDTO) *model.Room {
	if dto.CustomID == "" {
		s.random.QueueString("ABC234")
	}
	r, err := s.rooms.Create(s.ctx, dto)
	s.Require().NoError(err)
	return r
}

// visit starts a controller for the given identity and waits until the
// visit leaves the resolving phase
func (s *ControllerSuite) visit(roomID model.RoomID, ident *identity.Identity, justCreated bool) *Controller {
	s.controller = NewController(roomID, s.rooms, s.board, s.users, ident, justCreated, testutil.NopLogger())
	s.Require().NoError(s.controller.Start(s.ctx))
	s.Require().Eventually(func() bool {
		return s.controller.State().Phase != PhaseResolving
	}, waitFor, tick)
	return s.controller
}

func (s *ControllerSuite) TestMissingRoom() {
	c := s.visit("nowhere", s.viewer("u_1", "Alice"), false)
	s.Equal(PhaseNotFound, c.State().Phase)
}

func (s *ControllerSuite) TestAnonymousViewerMustSignIn() {
	s.createRoom(model.CreateRoomDTO{Name: "Game Night"})

	c := s.visit("ABC234", nil, false)
	state := c.State()
	s.Equal(PhaseLoginRequired, state.Phase)
	s.Require().NotNil(state.Room)
	s.Equal("Game Night", state.Room.Name)
}

func (s *ControllerSuite) TestOpenRoomIsImmediatelyReady() {
	s.createRoom(model.CreateRoomDTO{Name: "Game Night"})

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	state := c.State()
	s.Equal(PhaseReady, state.Phase)
	s.False(state.ReadOnly)

	// The visit lands in the viewer's recent rooms
	recent, err := s.users.RecentRooms(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal(model.RoomID("ABC234"), recent[0].RoomID)
	s.Equal(model.RolePlayer, recent[0].Role)
}

func (s *ControllerSuite) TestProtectedRoomAsksForPassword() {
	s.createRoom(model.CreateRoomDTO{Name: "Secret", Password: "hunter2", OwnerID: "u_owner"})

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	s.Equal(PhasePasswordRequired, c.State().Phase)
}

func (s *ControllerSuite) TestOwnerSkipsPassword() {
	s.createRoom(model.CreateRoomDTO{Name: "Secret", Password: "hunter2", OwnerID: "u_owner"})

	c := s.visit("ABC234", s.viewer("u_owner", "Owner"), false)
	s.Equal(PhaseReady, c.State().Phase)

	recent, err := s.users.RecentRooms(s.ctx, "u_owner")
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal(model.RoleOwner, recent[0].Role)
}

func (s *ControllerSuite) TestCreatorSkipsPasswordOnFirstVisit() {
	s.createRoom(model.CreateRoomDTO{Name: "Secret", Password: "hunter2", OwnerID: "u_other"})

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), true)
	s.Equal(PhaseReady, c.State().Phase)
}

func (s *ControllerSuite) TestSubmitPassword() {
	s.createRoom(model.CreateRoomDTO{Name: "Secret", Password: "hunter2", OwnerID: "u_owner"})

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	s.Require().Equal(PhasePasswordRequired, c.State().Phase)

	err := c.SubmitPassword(s.ctx, "wrong")
	s.ErrorIs(err, model.ErrWrongPassword)
	s.Equal(PhasePasswordRequired, c.State().Phase)

	s.Require().NoError(c.SubmitPassword(s.ctx, "hunter2"))
	s.Equal(PhaseReady, c.State().Phase)

	recent, err := s.users.RecentRooms(s.ctx, "u_1")
	s.Require().NoError(err)
	s.Len(recent, 1)
}

func (s *ControllerSuite) TestSnapshotBeforeUnlockReplayedOnSubmit() {
	s.createRoom(model.CreateRoomDTO{Name: "Secret", Password: "hunter2", OwnerID: "u_owner"})

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	s.Require().Equal(PhasePasswordRequired, c.State().Phase)

	// The one initial snapshot lands while the visit is still locked
	c.HandlePlayers(s.ctx, []model.Player{})

	players, err := s.storage.ListPlayers(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Require().Empty(players)

	// Unlocking replays that snapshot, so the viewer still auto-joins
	s.Require().NoError(c.SubmitPassword(s.ctx, "hunter2"))

	players, err = s.storage.ListPlayers(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal("Alice", players[0].Name)
	s.Equal(model.UserID("u_1"), players[0].LinkedIdentity)
}

func (s *ControllerSuite) TestSnapshotWhileResolvingReplayedOnReady() {
	s.createRoom(model.CreateRoomDTO{Name: "Game Night"})

	s.controller = NewController("ABC234", s.rooms, s.board, s.users,
		s.viewer("u_1", "Alice"), false, testutil.NopLogger())

	// The players feed beats the room feed
	s.controller.HandlePlayers(s.ctx, []model.Player{})

	s.Require().NoError(s.controller.Start(s.ctx))

	s.Require().Eventually(func() bool {
		players, err := s.storage.ListPlayers(s.ctx, "ABC234")
		return err == nil && len(players) == 1
	}, waitFor, tick)

	players, err := s.storage.ListPlayers(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal("Alice", players[0].Name)
}

func (s *ControllerSuite) TestFinishedRoomIsReadOnly() {
	s.createRoom(model.CreateRoomDTO{Name: "Done", OwnerID: "u_owner"})
	s.Require().NoError(s.rooms.Finish(s.ctx, "ABC234", "u_owner"))

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	state := c.State()
	s.Equal(PhaseReady, state.Phase)
	s.True(state.ReadOnly)
}

func (s *ControllerSuite) TestPasswordAddedMidVisitDoesNotEject() {
	s.createRoom(model.CreateRoomDTO{Name: "Game Night", OwnerID: "u_owner"})

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	s.Require().Equal(PhaseReady, c.State().Phase)

	s.Require().NoError(s.rooms.UpdatePassword(s.ctx, "ABC234", "u_owner", "newpass"))

	s.Require().Eventually(func() bool {
		state := c.State()
		return state.Room != nil && state.Room.HasPassword()
	}, waitFor, tick)
	s.Equal(PhaseReady, c.State().Phase)
}

func (s *ControllerSuite) TestRoomDeletedMidVisit() {
	s.createRoom(model.CreateRoomDTO{Name: "Game Night", OwnerID: "u_owner"})

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	s.Require().Equal(PhaseReady, c.State().Phase)

	s.Require().NoError(s.rooms.Delete(s.ctx, "ABC234", "u_owner"))

	s.Require().Eventually(func() bool {
		return c.State().Phase == PhaseNotFound
	}, waitFor, tick)
}

func (s *ControllerSuite) TestAutoJoinAddsLinkedPlayer() {
	s.createRoom(model.CreateRoomDTO{Name: "Game Night"})

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	s.Require().Equal(PhaseReady, c.State().Phase)

	c.HandlePlayers(s.ctx, []model.Player{})

	players, err := s.storage.ListPlayers(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Require().Len(players, 1)
	s.Equal("Alice", players[0].Name)
	s.Equal(model.UserID("u_1"), players[0].LinkedIdentity)
}

func (s *ControllerSuite) TestAutoJoinHappensOncePerVisit() {
	s.createRoom(model.CreateRoomDTO{Name: "Game Night"})

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	s.Require().Equal(PhaseReady, c.State().Phase)

	// A second empty snapshot must not add a second player, even if the
	// first join has not shown up in the feed yet
	c.HandlePlayers(s.ctx, []model.Player{})
	c.HandlePlayers(s.ctx, []model.Player{})

	players, err := s.storage.ListPlayers(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Len(players, 1)
}

func (s *ControllerSuite) TestNoAutoJoinWhenReadOnly() {
	s.createRoom(model.CreateRoomDTO{Name: "Done", OwnerID: "u_owner"})
	s.Require().NoError(s.rooms.Finish(s.ctx, "ABC234", "u_owner"))

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	s.Require().True(c.State().ReadOnly)

	c.HandlePlayers(s.ctx, []model.Player{})

	players, err := s.storage.ListPlayers(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Empty(players)
}

func (s *ControllerSuite) TestRenameDriftedLinkedPlayer() {
	s.createRoom(model.CreateRoomDTO{Name: "Game Night"})
	id, err := s.board.AddPlayer(s.ctx, "ABC234", model.CreatePlayerDTO{
		Name:           "Old Name",
		LinkedIdentity: "u_1",
	})
	s.Require().NoError(err)

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	s.Require().Equal(PhaseReady, c.State().Phase)

	c.HandlePlayers(s.ctx, []model.Player{
		{ID: id, Name: "Old Name", LinkedIdentity: "u_1"},
	})

	player, err := s.storage.GetPlayer(s.ctx, "ABC234", id)
	s.Require().NoError(err)
	s.Equal("Alice", player.Name)
}

func (s *ControllerSuite) TestMatchingLinkedPlayerLeftAlone() {
	s.createRoom(model.CreateRoomDTO{Name: "Game Night"})
	id, err := s.board.AddPlayer(s.ctx, "ABC234", model.CreatePlayerDTO{
		Name:           "Alice",
		LinkedIdentity: "u_1",
	})
	s.Require().NoError(err)

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	s.Require().Equal(PhaseReady, c.State().Phase)

	before, err := s.storage.GetPlayer(s.ctx, "ABC234", id)
	s.Require().NoError(err)

	c.HandlePlayers(s.ctx, []model.Player{
		{ID: id, Name: "Alice", Score: 3, LinkedIdentity: "u_1"},
	})

	after, err := s.storage.GetPlayer(s.ctx, "ABC234", id)
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *ControllerSuite) TestKickedWhenPlayerDisappears() {
	s.createRoom(model.CreateRoomDTO{Name: "Game Night", OwnerID: "u_owner"})

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	s.Require().Equal(PhaseReady, c.State().Phase)

	kicks := 0
	c.SetOnKicked(func() { kicks++ })

	mine := model.Player{ID: "p1", Name: "Alice", LinkedIdentity: "u_1"}
	c.HandlePlayers(s.ctx, []model.Player{mine})
	s.Equal(0, kicks)

	// Someone else removed this viewer's player
	c.HandlePlayers(s.ctx, []model.Player{})
	s.Equal(1, kicks)

	// The signal fires at most once
	c.HandlePlayers(s.ctx, []model.Player{})
	s.Equal(1, kicks)
}

func (s *ControllerSuite) TestOwnerIsNeverKicked() {
	s.createRoom(model.CreateRoomDTO{Name: "Game Night", OwnerID: "u_owner"})

	c := s.visit("ABC234", s.viewer("u_owner", "Owner"), false)
	s.Require().Equal(PhaseReady, c.State().Phase)

	kicks := 0
	c.SetOnKicked(func() { kicks++ })

	mine := model.Player{ID: "p1", Name: "Owner", LinkedIdentity: "u_owner"}
	c.HandlePlayers(s.ctx, []model.Player{mine})
	c.HandlePlayers(s.ctx, []model.Player{})
	s.Equal(0, kicks)
}

func (s *ControllerSuite) TestCanManage() {
	s.createRoom(model.CreateRoomDTO{Name: "Owned", OwnerID: "u_owner"})

	c := s.visit("ABC234", s.viewer("u_owner", "Owner"), false)
	s.True(c.CanManage())
	c.Stop()

	c = s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	s.False(c.CanManage())
}

func (s *ControllerSuite) TestCanManageLegacyRoom() {
	// No owner recorded; any signed-in viewer may manage
	s.createRoom(model.CreateRoomDTO{Name: "Legacy"})

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)
	s.True(c.CanManage())
}

func (s *ControllerSuite) TestListenDeliversCurrentState() {
	s.createRoom(model.CreateRoomDTO{Name: "Game Night"})

	c := s.visit("ABC234", s.viewer("u_1", "Alice"), false)

	states := make(chan State, 8)
	unlisten := c.Listen(func(state State) {
		states <- state
	})
	defer unlisten()

	select {
	case state := <-states:
		s.Equal(PhaseReady, state.Phase)
	case <-time.After(waitFor):
		s.Fail("no state delivered on listen")
	}
}
