package model

import "time"

// RoomID is a human-readable identifier for joining rooms.
// It is either a generated 6-character uppercase code or a
// lowercase dash-slug chosen by the creator.
type RoomID string

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	RoomStatusActive   RoomStatus = "active"   // Scores can be changed
	RoomStatusFinished RoomStatus = "finished" // Read-only, only reopen remains
)

// RoomRole distinguishes a room's owner from ordinary players
type RoomRole string

const (
	RoleOwner  RoomRole = "owner"
	RolePlayer RoomRole = "player"
)

// Room represents a scoreboard session
type Room struct {
	ID      RoomID
	Name    string
	OwnerID UserID // empty for rooms created before ownership tracking

	// PasswordHash is the stored password digest, empty when the room
	// is unprotected. See the password package for the format.
	PasswordHash string

	Status     RoomStatus
	CreatedAt  time.Time
	FinishedAt *time.Time // nil while the room is active
}

// HasPassword reports whether entering the room requires a password
func (r *Room) HasPassword() bool {
	return r.PasswordHash != ""
}

// IsFinished reports whether the room is in read-only mode
func (r *Room) IsFinished() bool {
	return r.Status == RoomStatusFinished
}

// CreateRoomDTO carries the inputs for creating a room
type CreateRoomDTO struct {
	Name     string
	CustomID string // optional; normalized to a slug when set
	Password string // optional; hashed before storage
	OwnerID  UserID // empty for anonymous creation
}
