package message

import (
	"encoding/json"
	"time"

	"sanma/common/log"
	"sanma/game"

	"github.com/nats-io/nats.go"
)

// NATS 主题，供外部审计/指标协作方订阅
const (
	SubjectGameEnd      = "sanma.game.end"
	SubjectRoomDegraded = "sanma.room.degraded"
	SubjectRoomDissolve = "sanma.room.dissolved"
)

// NatsPublisher 对外事件发布器
// 连接为空时静默降级为 no-op，发布失败只记日志（尽力送达）
type NatsPublisher struct {
	nc *nats.Conn
}

func NewNatsPublisher(url string) (*NatsPublisher, error) {
	if url == "" {
		return &NatsPublisher{}, nil
	}
	nc, err := nats.Connect(url,
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{nc: nc}, nil
}

func (p *NatsPublisher) publish(subject string, payload any) {
	if p == nil || p.nc == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error("NATS 序列化失败 subject=%s: %v", subject, err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		log.Error("NATS 发布失败 subject=%s: %v", subject, err)
	}
}

func (p *NatsPublisher) PublishGameEnd(record *game.GameRecord) {
	p.publish(SubjectGameEnd, map[string]any{
		"gameId":     record.GameID,
		"roomId":     record.RoomID,
		"result":     record.Settlement.Kind,
		"settlement": record.Settlement,
		"createdAt":  record.CreatedAt,
	})
}

func (p *NatsPublisher) PublishRoomDegraded(roomID, reason string) {
	p.publish(SubjectRoomDegraded, map[string]string{"roomId": roomID, "reason": reason})
}

func (p *NatsPublisher) PublishRoomDissolved(roomID string) {
	p.publish(SubjectRoomDissolve, map[string]string{"roomId": roomID})
}

func (p *NatsPublisher) Close() {
	if p != nil && p.nc != nil {
		p.nc.Drain()
	}
}
