package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Session:
		o.printSession(v)
	case Identity:
		o.printIdentity(v)
	case Room:
		o.printRoom(v)
	case RoomList:
		o.printRoomList(v)
	case PlayerList:
		o.printPlayerList(v)
	case User:
		o.printUser(v)
	case RecentRoomList:
		o.printRecentRooms(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Session response type (matches API)
type Session struct {
	Token     string    `json:"token"`
	Identity  Identity  `json:"identity"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity response type
type Identity struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Nickname    string `json:"nickname"`
	IsGuest     bool   `json:"is_guest"`
}

// Room response type
type Room struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	OwnerID     string     `json:"owner_id"`
	HasPassword bool       `json:"has_password"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at"`
}

// RoomList response type
type RoomList struct {
	Rooms []Room `json:"rooms"`
}

// Player response type
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// PlayerList response type
type PlayerList struct {
	Players []Player `json:"players"`
}

// User response type
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Nickname    string `json:"nickname"`
}

// RecentRoom response type
type RecentRoom struct {
	RoomID      string    `json:"room_id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	HasPassword bool      `json:"has_password"`
	LastAccess  time.Time `json:"last_access"`
}

// RecentRoomList response type
type RecentRoomList struct {
	RecentRooms []RecentRoom `json:"recent_rooms"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printSession(s Session) {
	o.printIdentity(s.Identity)
	fmt.Printf("Token: %s\n", s.Token)
	fmt.Printf("Expires: %s\n", s.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printIdentity(i Identity) {
	guestStr := "no"
	if i.IsGuest {
		guestStr = "yes"
	}
	fmt.Printf("User: %s (%s)\n", i.Nickname, i.UserID)
	fmt.Printf("Guest: %s\n", guestStr)
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.ID)
	fmt.Printf("Name: %s\n", r.Name)
	fmt.Printf("Status: %s\n", r.Status)
	if r.HasPassword {
		fmt.Println("Password protected: yes")
	}
	if r.FinishedAt != nil {
		fmt.Printf("Finished: %s\n", r.FinishedAt.Format(time.RFC3339))
	}
}

func (o *Output) printRoomList(l RoomList) {
	fmt.Printf("Rooms (%d):\n", len(l.Rooms))
	for _, r := range l.Rooms {
		lock := ""
		if r.HasPassword {
			lock = " [locked]"
		}
		fmt.Printf("  - %s: %s (%s)%s\n", r.ID, r.Name, r.Status, lock)
	}
}

func (o *Output) printPlayerList(l PlayerList) {
	fmt.Printf("Players (%d):\n", len(l.Players))
	for i, p := range l.Players {
		fmt.Printf("  %d. %s - %d (%s)\n", i+1, p.Name, p.Score, p.ID)
	}
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%s)\n", u.Nickname, u.ID)
	if u.DisplayName != u.Nickname {
		fmt.Printf("Display name: %s\n", u.DisplayName)
	}
}

func (o *Output) printRecentRooms(l RecentRoomList) {
	fmt.Printf("Recent rooms (%d):\n", len(l.RecentRooms))
	for _, r := range l.RecentRooms {
		lock := ""
		if r.HasPassword {
			lock = " [locked]"
		}
		fmt.Printf("  - %s: %s (%s)%s - %s\n", r.RoomID, r.Name, r.Role, lock, r.LastAccess.Format(time.RFC3339))
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
