package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/boardscore/boardscore/internal/model"
	"github.com/boardscore/boardscore/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
//
// Rooms and users are stored as JSON documents. Players are stored as
// one hash per player with the score in its own field, so score
// changes go through HINCRBY and stay atomic under concurrent writers.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}

	// Pipeline the document write and the creation-time index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, roomKey(room.ID), data, s.cfg.RoomTTL)
	pipe.ZAdd(ctx, roomsIndexKey(), redis.Z{
		Score:  float64(room.CreatedAt.UnixMilli()),
		Member: string(room.ID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRoomNotFound
		}
		return nil, err
	}

	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, roomKey(id))
	pipe.ZRem(ctx, roomsIndexKey(), string(id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	exists, err := s.client.Exists(ctx, roomKey(id)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	// Newest first via the creation-time sorted set
	ids, err := s.client.ZRevRange(ctx, roomsIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*model.Room{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = roomKey(model.RoomID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	rooms := make([]*model.Room, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue // Room may have expired under the index
		}
		var room model.Room
		if err := json.Unmarshal([]byte(val.(string)), &room); err != nil {
			continue // Skip invalid data
		}
		rooms = append(rooms, &room)
	}
	return rooms, nil
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, roomID model.RoomID, player *model.Player) error {
	pKey := playerKey(roomID, player.ID)
	indexKey := playersIndexKey(roomID)

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, pKey,
		"id", string(player.ID),
		"name", player.Name,
		"score", player.Score,
		"linked_identity", string(player.LinkedIdentity),
		"avatar_url", player.AvatarURL,
		"created_at", player.CreatedAt.Format(time.RFC3339Nano),
		"updated_at", player.UpdatedAt.Format(time.RFC3339Nano),
	)
	pipe.SAdd(ctx, indexKey, pKey)
	if s.cfg.RoomTTL > 0 {
		pipe.Expire(ctx, pKey, s.cfg.RoomTTL)
		pipe.Expire(ctx, indexKey, s.cfg.RoomTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*model.Player, error) {
	fields, err := s.client.HGetAll(ctx, playerKey(roomID, playerID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrPlayerNotFound
	}
	return playerFromHash(fields), nil
}

func (s *Storage) DeletePlayer(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, playerKey(roomID, playerID))
	pipe.SRem(ctx, playersIndexKey(roomID), playerKey(roomID, playerID))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) ListPlayers(ctx context.Context, roomID model.RoomID) ([]*model.Player, error) {
	keys, err := s.client.SMembers(ctx, playersIndexKey(roomID)).Result()
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*model.Player{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HGetAll(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(cmds))
	for _, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			continue // Player may have expired under the index
		}
		players = append(players, playerFromHash(fields))
	}
	return players, nil
}

func (s *Storage) IncrementScore(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, delta int, updatedAt time.Time) error {
	pKey := playerKey(roomID, playerID)

	exists, err := s.client.Exists(ctx, pKey).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrPlayerNotFound
	}

	// HINCRBY is the atomic increment; no read-modify-write
	pipe := s.client.Pipeline()
	pipe.HIncrBy(ctx, pKey, "score", int64(delta))
	pipe.HSet(ctx, pKey, "updated_at", updatedAt.Format(time.RFC3339Nano))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) DeletePlayersForRoom(ctx context.Context, roomID model.RoomID) error {
	indexKey := playersIndexKey(roomID)

	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	pipe.Del(ctx, indexKey)
	_, err = pipe.Exec(ctx)
	return err
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	// Users never expire
	return s.client.Set(ctx, userKey(user.ID), data, 0).Err()
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Credential operations

func (s *Storage) SaveCredentials(ctx context.Context, creds *model.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	// Credentials never expire
	return s.client.Set(ctx, credentialsKey(creds.Username), data, 0).Err()
}

func (s *Storage) GetCredentialsByUsername(ctx context.Context, username string) (*model.Credentials, error) {
	data, err := s.client.Get(ctx, credentialsKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCredentialsNotFound
		}
		return nil, err
	}

	var creds model.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// playerFromHash maps the loosely-typed hash fields onto a Player,
// defaulting anything missing or malformed
func playerFromHash(fields map[string]string) *model.Player {
	score, _ := strconv.Atoi(fields["score"])
	createdAt, _ := time.Parse(time.RFC3339Nano, fields["created_at"])
	updatedAt, _ := time.Parse(time.RFC3339Nano, fields["updated_at"])
	return &model.Player{
		ID:             model.PlayerID(fields["id"]),
		Name:           fields["name"],
		Score:          score,
		LinkedIdentity: model.UserID(fields["linked_identity"]),
		AvatarURL:      fields["avatar_url"],
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}
