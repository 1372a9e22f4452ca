package repository

import (
	"context"
	"errors"

	"sanma/core/entity"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// GameRecordRepository 终局记录仓储端口
type GameRecordRepository interface {
	// SaveGameRecord 一次性写入对局与玩家战绩；game_id 重复视为已写入
	SaveGameRecord(ctx context.Context, record *entity.GameRecord, players []*entity.GamePlayerRecord) error
	FindByGameID(ctx context.Context, gameID string) (*entity.GameRecord, error)
	ListByUser(ctx context.Context, userID int64, page, size int) ([]*entity.GamePlayerRecord, int64, error)
}
