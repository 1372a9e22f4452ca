package conn

import (
	"encoding/json"
	"sync"
	"time"

	"sanma/common/log"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	sendQueueSize  = 64
	writeWait      = 10 * time.Second
	pongWait       = 120 * time.Second
	pingPeriod     = 50 * time.Second
	maxMessageSize = 8192
)

// LongConnection 单个玩家的长连接
// 独立写协程消费 sendCh，同一用户的消息天然 FIFO
type LongConnection struct {
	ConnID string
	UserID int64

	conn   *websocket.Conn
	sendCh chan []byte
	worker *Worker

	closeOnce sync.Once
	done      chan struct{}
}

func newLongConnection(conn *websocket.Conn, userID int64, worker *Worker) *LongConnection {
	return &LongConnection{
		ConnID: uuid.NewString(),
		UserID: userID,
		conn:   conn,
		sendCh: make(chan []byte, sendQueueSize),
		worker: worker,
	}
}

// Run 启动读写泵
func (c *LongConnection) Run() {
	c.done = make(chan struct{})
	go c.writePump()
	go c.readPump()
}

func (c *LongConnection) readPump() {
	defer c.worker.removeClient(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("连接 %s 异常断开: %v", c.ConnID, err)
			}
			return
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.Send(ErrorResponseFrame("", "", errInvalidFrame))
			continue
		}
		c.worker.handleFrame(c, &frame)
	}
}

func (c *LongConnection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case data, ok := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send 帧入发送队列；队列满说明消费跟不上，断开连接
func (c *LongConnection) Send(frame *Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		log.Error("帧序列化失败: %v", err)
		return
	}
	select {
	case c.sendCh <- data:
	default:
		log.Warn("连接 %s 发送队列已满, 断开", c.ConnID)
		c.Close()
	}
}

// Close 关闭连接，幂等
func (c *LongConnection) Close() {
	c.closeOnce.Do(func() {
		if c.done != nil {
			close(c.done)
		}
		c.conn.Close()
	})
}
