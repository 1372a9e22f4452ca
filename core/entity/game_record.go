package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GameRecord 终局记录文档（一次性写入）
// 动作与终局手牌按 JSON 存，结构演进不触发集合迁移
type GameRecord struct {
	ID           primitive.ObjectID `bson:"_id"`
	GameID       string             `bson:"game_id"`
	RoomID       string             `bson:"room_id"`
	Seed         int64              `bson:"seed"`
	RoundIndex   int                `bson:"round_index"`
	Config       string             `bson:"config"`      // JSON
	Actions      string             `bson:"actions"`     // JSON
	FinalHands   string             `bson:"final_hands"` // JSON
	Settlement   string             `bson:"settlement"`  // JSON
	Result       string             `bson:"result"`      // WIN / DRAW_OUT / DISSOLVED
	WinnerUserID *int64             `bson:"winner_user_id,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

// GamePlayerRecord 按玩家拆分的战绩行，供历史查询
type GamePlayerRecord struct {
	ID         primitive.ObjectID `bson:"_id"`
	GameID     string             `bson:"game_id"`
	RoomID     string             `bson:"room_id"`
	UserID     int64              `bson:"user_id"`
	Seat       int                `bson:"seat"`
	Result     string             `bson:"result"` // WIN / LOSE / DRAW
	Score      int                `bson:"score"`
	IsDealer   bool               `bson:"is_dealer"`
	IsSelfDraw bool               `bson:"is_self_draw"`
	CreatedAt  time.Time          `bson:"created_at"`
}

func NewGameRecord(gameID, roomID string) *GameRecord {
	return &GameRecord{
		ID:        primitive.NewObjectID(),
		GameID:    gameID,
		RoomID:    roomID,
		CreatedAt: time.Now(),
	}
}

func NewGamePlayerRecord(gameID, roomID string, userID int64, seat int) *GamePlayerRecord {
	return &GamePlayerRecord{
		ID:        primitive.NewObjectID(),
		GameID:    gameID,
		RoomID:    roomID,
		UserID:    userID,
		Seat:      seat,
		CreatedAt: time.Now(),
	}
}
