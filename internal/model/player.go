package model

import "time"

// PlayerID uniquely identifies a player within a room
type PlayerID string

// Player represents a score-tracking entry within a room.
// Guests added by hand have an empty LinkedIdentity and may share
// a name with other entries; at most one player per room may carry
// a given non-empty LinkedIdentity.
type Player struct {
	ID             PlayerID
	Name           string
	Score          int
	LinkedIdentity UserID // identity auto-joined as this player, if any
	AvatarURL      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreatePlayerDTO carries the inputs for adding a player to a room
type CreatePlayerDTO struct {
	Name           string
	LinkedIdentity UserID
	AvatarURL      string
}
