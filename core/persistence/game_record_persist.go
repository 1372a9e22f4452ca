package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"sanma/common/database"
	"sanma/common/log"
	"sanma/core/entity"
	"sanma/core/repository"
	"sanma/game"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collGameRecords       = "game_records"
	collGamePlayerRecords = "game_player_records"
)

// MongoGameRecordRepository 终局记录的 Mongo 实现
type MongoGameRecordRepository struct {
	db *mongo.Database
}

func NewMongoGameRecordRepository(m *database.MongoManager) *MongoGameRecordRepository {
	repo := &MongoGameRecordRepository{db: m.Db}
	repo.ensureIndexes()
	return repo
}

func (r *MongoGameRecordRepository) ensureIndexes() {
	ctx := context.Background()
	_, err := r.db.Collection(collGameRecords).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "game_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Warn("game_records 索引创建失败: %v", err)
	}
	_, err = r.db.Collection(collGamePlayerRecords).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		log.Warn("game_player_records 索引创建失败: %v", err)
	}
}

func (r *MongoGameRecordRepository) SaveGameRecord(ctx context.Context, record *entity.GameRecord, players []*entity.GamePlayerRecord) error {
	if _, err := r.db.Collection(collGameRecords).InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// 重试路径上的重复写视为成功
			return nil
		}
		return err
	}

	docs := make([]any, 0, len(players))
	for _, p := range players {
		docs = append(docs, p)
	}
	if len(docs) > 0 {
		if _, err := r.db.Collection(collGamePlayerRecords).InsertMany(ctx, docs); err != nil {
			return err
		}
	}
	return nil
}

func (r *MongoGameRecordRepository) FindByGameID(ctx context.Context, gameID string) (*entity.GameRecord, error) {
	var record entity.GameRecord
	err := r.db.Collection(collGameRecords).FindOne(ctx, bson.M{"game_id": gameID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *MongoGameRecordRepository) ListByUser(ctx context.Context, userID int64, page, size int) ([]*entity.GamePlayerRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	filter := bson.M{"user_id": userID}
	coll := r.db.Collection(collGamePlayerRecords)

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * size)).
		SetLimit(int64(size))
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var out []*entity.GamePlayerRecord
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// RecordStoreAdapter 把引擎的 GameRecord 转成文档落库
type RecordStoreAdapter struct {
	repo repository.GameRecordRepository
}

func NewRecordStoreAdapter(repo repository.GameRecordRepository) *RecordStoreAdapter {
	return &RecordStoreAdapter{repo: repo}
}

func (a *RecordStoreAdapter) SaveGameRecord(ctx context.Context, record *game.GameRecord) error {
	doc := entity.NewGameRecord(record.GameID, record.RoomID)
	doc.Seed = record.Seed
	doc.RoundIndex = record.RoundIndex
	doc.CreatedAt = record.CreatedAt

	configJSON, err := json.Marshal(record.Config)
	if err != nil {
		return err
	}
	actionsJSON, err := json.Marshal(record.Actions)
	if err != nil {
		return err
	}
	handsJSON, err := json.Marshal(record.FinalHands)
	if err != nil {
		return err
	}
	settlementJSON, err := json.Marshal(record.Settlement)
	if err != nil {
		return err
	}
	doc.Config = string(configJSON)
	doc.Actions = string(actionsJSON)
	doc.FinalHands = string(handsJSON)
	doc.Settlement = string(settlementJSON)
	doc.Result = string(record.Settlement.Kind)

	winners := map[int]game.WinnerDetail{}
	if record.Settlement != nil {
		for _, w := range record.Settlement.Winners {
			winners[w.Seat] = w
		}
		if len(record.Settlement.Winners) == 1 {
			uid := record.Settlement.Winners[0].UserID
			doc.WinnerUserID = &uid
		}
	}

	players := make([]*entity.GamePlayerRecord, 0, 3)
	for seat, userID := range record.UserIDs {
		p := entity.NewGamePlayerRecord(record.GameID, record.RoomID, userID, seat)
		p.CreatedAt = record.CreatedAt
		p.IsDealer = seat == record.DealerSeat
		if record.Settlement != nil {
			p.Score = record.Settlement.Totals[seat]
			if w, ok := winners[seat]; ok {
				p.Result = "WIN"
				p.IsSelfDraw = w.SelfDraw
			} else if record.Settlement.Kind == game.SettleWinKind {
				p.Result = "LOSE"
			} else {
				p.Result = "DRAW"
			}
		}
		players = append(players, p)
	}

	return a.repo.SaveGameRecord(ctx, doc, players)
}
