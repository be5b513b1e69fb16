package model

import "time"

// UserID identifies a signed-in identity
type UserID string

// MaxRecentRooms bounds the per-user recently visited rooms list
const MaxRecentRooms = 20

// RecentRoom is one entry in a user's recently visited rooms list
type RecentRoom struct {
	RoomID      RoomID
	Name        string
	Role        RoomRole
	HasPassword bool
	LastAccess  time.Time
}

// Credentials links a username and password hash to a registered
// identity. Guests have no credentials record.
type Credentials struct {
	UserID       UserID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User is the stored profile for a signed-in identity.
// Nickname defaults to DisplayName on first creation and is owned by
// the user afterwards: profile syncs from the identity provider update
// Email, DisplayName and AvatarURL but never touch Nickname.
type User struct {
	ID          UserID
	Email       string
	DisplayName string
	Nickname    string
	AvatarURL   string
	RecentRooms []RecentRoom // most recent first, deduplicated by room id
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
