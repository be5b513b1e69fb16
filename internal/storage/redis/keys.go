package redis

import (
	"fmt"

	"github.com/boardscore/boardscore/internal/model"
)

// Key prefix for all scoreboard data
const keyPrefix = "boardscore"

// roomKey returns the Redis key for a Room document
func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

// roomsIndexKey returns the Redis key for the sorted set of room ids,
// scored by creation time
func roomsIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", keyPrefix)
}

// playerKey returns the Redis key for a player hash.
// Players are stored one hash per player so that score increments can
// use HINCRBY.
func playerKey(roomID model.RoomID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:room:%s:player:%s", keyPrefix, roomID, playerID)
}

// playersIndexKey returns the Redis key for the SET of a room's player keys
func playersIndexKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:idx:players:%s", keyPrefix, roomID)
}

// userKey returns the Redis key for a User document
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// credentialsKey returns the Redis key for a Credentials document,
// indexed by username
func credentialsKey(username string) string {
	return fmt.Sprintf("%s:creds:%s", keyPrefix, username)
}
