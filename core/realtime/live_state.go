package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sanma/common/database"
	"sanma/game"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"
)

// 实时 KV 键名布局
// game:<roomId>            → 序列化 GameState
// room:<roomId>            → 房间摘要
// player:session:<userId>  → { sessionId, roomId }
func gameKey(roomID string) string          { return "game:" + roomID }
func roomKey(roomID string) string          { return "room:" + roomID }
func playerSessionKey(userID int64) string  { return fmt.Sprintf("player:session:%d", userID) }

// PlayerSession 玩家路由条目
type PlayerSession struct {
	SessionID string `json:"sessionId"`
	RoomID    string `json:"roomId"`
}

// LiveStateStore 实时状态写通层
// 每次写刷新 TTL，键过期意味着房间已崩溃；摘要读走 ristretto 前置缓存
type LiveStateStore struct {
	rdb   *database.RedisManager
	ttl   time.Duration
	cache *ristretto.Cache
}

func NewLiveStateStore(rdb *database.RedisManager, ttl time.Duration) (*LiveStateStore, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     10 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &LiveStateStore{rdb: rdb, ttl: ttl, cache: cache}, nil
}

func (s *LiveStateStore) SaveGameState(ctx context.Context, g *game.GameState) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, gameKey(g.RoomID), string(data), s.ttl)
}

func (s *LiveStateStore) SaveRoomSummary(ctx context.Context, summary *game.RoomSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	s.cache.SetWithTTL(roomKey(summary.RoomID), summary, int64(len(data)), s.ttl)
	return s.rdb.Set(ctx, roomKey(summary.RoomID), string(data), s.ttl)
}

// GetRoomSummary 先查进程内缓存再回源 redis
func (s *LiveStateStore) GetRoomSummary(ctx context.Context, roomID string) (*game.RoomSummary, error) {
	if v, ok := s.cache.Get(roomKey(roomID)); ok {
		if sum, ok := v.(*game.RoomSummary); ok {
			return sum, nil
		}
	}
	data, err := s.rdb.Get(ctx, roomKey(roomID))
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var sum game.RoomSummary
	if err := json.Unmarshal([]byte(data), &sum); err != nil {
		return nil, err
	}
	s.cache.SetWithTTL(roomKey(roomID), &sum, int64(len(data)), s.ttl)
	return &sum, nil
}

func (s *LiveStateStore) DeleteRoom(ctx context.Context, roomID string) error {
	s.cache.Del(roomKey(roomID))
	return s.rdb.Del(ctx, gameKey(roomID), roomKey(roomID))
}

func (s *LiveStateStore) SavePlayerSession(ctx context.Context, userID int64, roomID string) error {
	data, err := json.Marshal(PlayerSession{RoomID: roomID})
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, playerSessionKey(userID), string(data), s.ttl)
}

func (s *LiveStateStore) DeletePlayerSession(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, playerSessionKey(userID))
}

// GetPlayerSession 查询玩家路由；不存在返回 nil
func (s *LiveStateStore) GetPlayerSession(ctx context.Context, userID int64) (*PlayerSession, error) {
	data, err := s.rdb.Get(ctx, playerSessionKey(userID))
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var sess PlayerSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *LiveStateStore) Close() {
	s.cache.Close()
}
