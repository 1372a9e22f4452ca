package game

import "context"

// LiveStore 实时状态写通层（快速 KV）
// 写失败由调用方退避重试，持续失败转 DEGRADED，不拖垮对局
type LiveStore interface {
	SaveGameState(ctx context.Context, g *GameState) error
	SaveRoomSummary(ctx context.Context, summary *RoomSummary) error
	DeleteRoom(ctx context.Context, roomID string) error
	SavePlayerSession(ctx context.Context, userID int64, roomID string) error
	DeletePlayerSession(ctx context.Context, userID int64) error
}

// RecordStore 终局记录的一次性落库（关系/文档型）
type RecordStore interface {
	SaveGameRecord(ctx context.Context, record *GameRecord) error
}

// EventPublisher 对外部协作方（审计、指标）的事件发布
type EventPublisher interface {
	PublishGameEnd(record *GameRecord)
	PublishRoomDegraded(roomID, reason string)
	PublishRoomDissolved(roomID string)
}

// NopLiveStore 单测用空实现
type NopLiveStore struct{}

func (NopLiveStore) SaveGameState(context.Context, *GameState) error          { return nil }
func (NopLiveStore) SaveRoomSummary(context.Context, *RoomSummary) error      { return nil }
func (NopLiveStore) DeleteRoom(context.Context, string) error                 { return nil }
func (NopLiveStore) SavePlayerSession(context.Context, int64, string) error   { return nil }
func (NopLiveStore) DeletePlayerSession(context.Context, int64) error         { return nil }

// NopRecordStore 单测用空实现
type NopRecordStore struct{}

func (NopRecordStore) SaveGameRecord(context.Context, *GameRecord) error { return nil }

// NopPublisher 单测用空实现
type NopPublisher struct{}

func (NopPublisher) PublishGameEnd(*GameRecord)          {}
func (NopPublisher) PublishRoomDegraded(string, string)  {}
func (NopPublisher) PublishRoomDissolved(string)         {}
