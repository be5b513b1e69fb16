package response

import (
	"time"

	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/services/identity"
)

// Room is the API representation of a room. The password hash never
// leaves the server; only its presence is exposed.
type Room struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	OwnerID     string     `json:"owner_id,omitempty"`
	HasPassword bool       `json:"has_password"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// RoomFromModel converts a model room to its API representation
func RoomFromModel(r *model.Room) Room {
	return Room{
		ID:          string(r.ID),
		Name:        r.Name,
		OwnerID:     string(r.OwnerID),
		HasPassword: r.HasPassword(),
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		FinishedAt:  r.FinishedAt,
	}
}

// RoomList wraps a list of rooms
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// RoomListFromModel converts model rooms to the API list
func RoomListFromModel(rooms []*model.Room) RoomList {
	out := RoomList{Rooms: make([]Room, 0, len(rooms))}
	for _, r := range rooms {
		out.Rooms = append(out.Rooms, RoomFromModel(r))
	}
	return out
}

// Player is the API representation of a scoreboard player
type Player struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Score          int       `json:"score"`
	LinkedIdentity string    `json:"linked_identity,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PlayerFromModel converts a model player to its API representation
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:             string(p.ID),
		Name:           p.Name,
		Score:          p.Score,
		LinkedIdentity: string(p.LinkedIdentity),
		AvatarURL:      p.AvatarURL,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// PlayerList wraps a list of players in display order
type PlayerList struct {
	Players []Player `json:"players"`
}

// PlayerListFromModel converts model players to the API list
func PlayerListFromModel(players []model.Player) PlayerList {
	out := PlayerList{Players: make([]Player, 0, len(players))}
	for _, p := range players {
		out.Players = append(out.Players, PlayerFromModel(p))
	}
	return out
}

// Session is the API representation of a sign-in result
type Session struct {
	Token     string    `json:"token"`
	Identity  Identity  `json:"identity"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity is the API representation of a signed-in principal
type Identity struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Nickname    string `json:"nickname"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsGuest     bool   `json:"is_guest"`
}

// SessionFromModel converts an identity session to its API representation
func SessionFromModel(s *identity.Session) Session {
	return Session{
		Token:     s.Token,
		Identity:  IdentityFromModel(&s.Identity),
		ExpiresAt: s.ExpiresAt,
	}
}

// IdentityFromModel converts an identity to its API representation
func IdentityFromModel(i *identity.Identity) Identity {
	return Identity{
		UserID:      string(i.UserID),
		DisplayName: i.DisplayName,
		Nickname:    i.Nickname,
		AvatarURL:   i.AvatarURL,
		IsGuest:     i.IsGuest,
	}
}

// User is the API representation of a stored profile
type User struct {
	ID          string       `json:"id"`
	Email       string       `json:"email,omitempty"`
	DisplayName string       `json:"display_name"`
	Nickname    string       `json:"nickname"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	RecentRooms []RecentRoom `json:"recent_rooms"`
}

// RecentRoom is one entry in a user's recently visited rooms
type RecentRoom struct {
	RoomID      string    `json:"room_id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	HasPassword bool      `json:"has_password"`
	LastAccess  time.Time `json:"last_access"`
}

// UserFromModel converts a model user to its API representation
func UserFromModel(u *model.User) User {
	return User{
		ID:          string(u.ID),
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Nickname:    u.Nickname,
		AvatarURL:   u.AvatarURL,
		RecentRooms: RecentRoomsFromModel(u.RecentRooms),
	}
}

// RecentRoomsFromModel converts recent room entries to the API form
func RecentRoomsFromModel(rooms []model.RecentRoom) []RecentRoom {
	out := make([]RecentRoom, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RecentRoom{
			RoomID:      string(r.RoomID),
			Name:        r.Name,
			Role:        string(r.Role),
			HasPassword: r.HasPassword,
			LastAccess:  r.LastAccess,
		})
	}
	return out
}
