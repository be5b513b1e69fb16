// Package request defines the JSON request bodies the API accepts
package request

// CreateGuestRequest creates an anonymous identity
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest creates a registered account
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest signs in a registered account
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateRoomRequest creates a room. CustomID is optional; when empty a
// code is generated.
type CreateRoomRequest struct {
	Name     string `json:"name"`
	CustomID string `json:"custom_id,omitempty"`
	Password string `json:"password,omitempty"`
}

// VerifyPasswordRequest presents a room password
type VerifyPasswordRequest struct {
	Password string `json:"password"`
}

// UpdatePasswordRequest changes or clears a room password.
// An empty password removes protection.
type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

// AddPlayerRequest adds a player to a room's board
type AddPlayerRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// RenamePlayerRequest changes a player's display name
type RenamePlayerRequest struct {
	Name string `json:"name"`
}

// ScoreRequest adjusts a player's score by a signed amount
type ScoreRequest struct {
	Amount int `json:"amount"`
}

// UpdateNicknameRequest changes the viewer's board nickname
type UpdateNicknameRequest struct {
	Nickname string `json:"nickname"`
}
