package conn

import (
	"encoding/json"
	"errors"
	"hash/fnv"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"sanma/common/config"
	"sanma/common/jwts"
	"sanma/common/log"
	"sanma/common/utils"
	"sanma/game"
)

var errInvalidFrame = game.NewGameError(game.CodeInvalidInput, "帧格式非法")

const bucketCount = 32

// ClientBucket 连接分片桶，降低全局锁竞争
type ClientBucket struct {
	sync.RWMutex
	clients map[string]*LongConnection
}

// Worker 长连接网关
// 职责：握手鉴权、连接生命周期、帧解析、分发到房间引擎
type Worker struct {
	sessions *SessionManager
	rm       *game.RoomManager

	upgrader      upgrader
	buckets       []*ClientBucket
	bucketMask    uint32
	rateLimiter   *utils.RateLimiter
	connSemaphore chan struct{}

	stats struct {
		currentConnections int32
		messageProcessed   int64
		messageErrors      int64
	}
}

func NewWorker(sessions *SessionManager, rm *game.RoomManager) *Worker {
	sessionConf := config.Conf.SessionConf
	w := &Worker{
		sessions:      sessions,
		rm:            rm,
		buckets:       make([]*ClientBucket, bucketCount),
		bucketMask:    uint32(bucketCount - 1),
		rateLimiter:   utils.NewRateLimiter(sessionConf.ConnectRatePerSec, sessionConf.ConnectRatePerSec*2),
		connSemaphore: make(chan struct{}, sessionConf.MaxConnections),
	}
	for i := range w.buckets {
		w.buckets[i] = &ClientBucket{clients: make(map[string]*LongConnection)}
	}
	w.upgrader = newUpgrader()
	return w
}

// HandleWS 长连接入口，可直接挂到 http mux 或 gin.WrapF
func (w *Worker) HandleWS(writer http.ResponseWriter, r *http.Request) {
	userID, err := w.identifyUser(r)
	if err != nil {
		http.Error(writer, "unauthorized", http.StatusUnauthorized)
		log.Warn("连接鉴权失败 remote=%s err=%v", r.RemoteAddr, err)
		return
	}
	if !w.rateLimiter.Allow() {
		http.Error(writer, "too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := w.upgrader.Upgrade(writer, r, nil)
	if err != nil {
		log.Warn("websocket 升级失败: %v", err)
		return
	}

	client := newLongConnection(conn, userID, w)
	if !w.addClient(client) {
		log.Warn("连接达到上限, 拒绝 %s", r.RemoteAddr)
		conn.Close()
		return
	}
	w.sessions.Bind(userID, client)
	client.Run()
	log.Info("WebSocket 建立连接: userID=%d connID=%s remote=%s", userID, client.ConnID, r.RemoteAddr)
}

// identifyUser 握手鉴权：token 查询参数或 Authorization 头
func (w *Worker) identifyUser(r *http.Request) (int64, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		auth := r.Header.Get("Authorization")
		token = strings.TrimPrefix(auth, "Bearer ")
	}
	if token == "" {
		return 0, errors.New("缺少 token")
	}
	secret := config.Conf.JwtConf.Secret
	userID, role, err := jwts.ParseToken(token, secret)
	if err != nil {
		return 0, err
	}
	if role == jwts.RoleBanned {
		return 0, game.NewGameError(game.CodeUserBanned, "用户 %d 已被封禁", userID)
	}
	return userID, nil
}

func (w *Worker) addClient(c *LongConnection) bool {
	select {
	case w.connSemaphore <- struct{}{}:
	default:
		return false
	}
	bucket := w.getBucket(c.ConnID)
	bucket.Lock()
	bucket.clients[c.ConnID] = c
	bucket.Unlock()
	atomic.AddInt32(&w.stats.currentConnections, 1)
	return true
}

func (w *Worker) removeClient(c *LongConnection) {
	bucket := w.getBucket(c.ConnID)
	bucket.Lock()
	_, ok := bucket.clients[c.ConnID]
	if ok {
		delete(bucket.clients, c.ConnID)
	}
	bucket.Unlock()
	if !ok {
		return
	}

	w.sessions.Unbind(c.UserID, c)
	c.Close()
	select {
	case <-w.connSemaphore:
	default:
	}
	atomic.AddInt32(&w.stats.currentConnections, -1)
	log.Info("WebSocket 断开: userID=%d connID=%s", c.UserID, c.ConnID)
}

func (w *Worker) getBucket(connID string) *ClientBucket {
	h := fnv.New32a()
	h.Write([]byte(connID))
	return w.buckets[h.Sum32()&w.bucketMask]
}

// handleFrame 解析并分发一帧
func (w *Worker) handleFrame(c *LongConnection, frame *Frame) {
	atomic.AddInt64(&w.stats.messageProcessed, 1)

	switch frame.Cmd {
	case "ping":
		c.Send(ResponseFrame(frame.RequestID, "ping", map[string]int64{"ts": time.Now().UnixMilli()}))
	case "reconnect":
		w.handleReconnect(c, frame)
	case "snapshot":
		w.handleSnapshot(c, frame)
	case "room/join":
		w.handleRoomJoin(c, frame)
	case "room/leave":
		w.handleRoomLeave(c, frame)
	case "play", "peng", "gang", "chi", "hu", "pass":
		w.handleGameAction(c, frame)
	default:
		atomic.AddInt64(&w.stats.messageErrors, 1)
		c.Send(ErrorResponseFrame(frame.RequestID, frame.Cmd,
			game.NewGameError(game.CodeInvalidInput, "未知命令: %s", frame.Cmd)))
	}
}

// handleReconnect 断线重连：窗口校验 → 引擎恢复 → 个人快照
func (w *Worker) handleReconnect(c *LongConnection, frame *Frame) {
	if err := w.sessions.CheckReconnect(c.UserID); err != nil {
		c.Send(ErrorResponseFrame(frame.RequestID, frame.Cmd, err))
		c.Close()
		return
	}
	engine, ok := w.rm.GetUserEngine(c.UserID)
	if !ok {
		c.Send(ErrorResponseFrame(frame.RequestID, frame.Cmd,
			game.NewGameError(game.CodeRoomNotFound, "没有进行中的对局")))
		return
	}
	w.sessions.ClearDisconnection(c.UserID)
	requestID := frame.RequestID
	engine.NotifyReconnect(c.UserID, func(snap *game.GameSnapshot, err error) {
		if err != nil {
			c.Send(ErrorResponseFrame(requestID, "reconnect", err))
			return
		}
		c.Send(ResponseFrame(requestID, "reconnect", snap))
	})
}

func (w *Worker) handleSnapshot(c *LongConnection, frame *Frame) {
	engine, ok := w.rm.GetUserEngine(c.UserID)
	if !ok {
		c.Send(ErrorResponseFrame(frame.RequestID, frame.Cmd,
			game.NewGameError(game.CodeRoomNotFound, "没有进行中的对局")))
		return
	}
	requestID := frame.RequestID
	engine.RequestSnapshot(c.UserID, func(snap *game.GameSnapshot, err error) {
		if err != nil {
			c.Send(ErrorResponseFrame(requestID, "snapshot", err))
			return
		}
		c.Send(ResponseFrame(requestID, "snapshot", snap))
	})
}

type roomJoinPayload struct {
	RoomID string `json:"roomId"`
}

// handleRoomJoin 长连接侧的进房（与 REST 入口等价）
func (w *Worker) handleRoomJoin(c *LongConnection, frame *Frame) {
	var p roomJoinPayload
	if err := json.Unmarshal(frame.Data, &p); err != nil || len(p.RoomID) != 6 {
		c.Send(ErrorResponseFrame(frame.RequestID, frame.Cmd,
			game.NewGameError(game.CodeInvalidInput, "房间号必须是 6 位数字")))
		return
	}
	room, seat, err := w.rm.JoinRoom(c.UserID, p.RoomID)
	if err != nil {
		c.Send(ErrorResponseFrame(frame.RequestID, frame.Cmd, err))
		return
	}
	c.Send(ResponseFrame(frame.RequestID, frame.Cmd, map[string]any{
		"room": room.Summary(),
		"seat": seat,
	}))
}

func (w *Worker) handleRoomLeave(c *LongConnection, frame *Frame) {
	if err := w.rm.LeaveRoom(c.UserID); err != nil {
		c.Send(ErrorResponseFrame(frame.RequestID, frame.Cmd, err))
		return
	}
	c.Send(ResponseFrame(frame.RequestID, frame.Cmd, map[string]bool{"ok": true}))
}

// 动作负载

type playPayload struct {
	Tile string `json:"tile"`
}

type pengPayload struct {
	Tile        string `json:"tile"`
	ClaimedFrom int    `json:"claimedFrom"`
}

type gangPayload struct {
	Tile        string `json:"tile"`
	GangType    string `json:"gangType"`
	ClaimedFrom *int   `json:"claimedFrom,omitempty"`
}

type chiPayload struct {
	Tile     string    `json:"tile"`
	Sequence [3]string `json:"sequence"`
}

type huPayload struct {
	WinningTile string `json:"winningTile"`
	SelfDraw    bool   `json:"selfDraw"`
}

// handleGameAction 解析动作负载并提交到房间引擎
func (w *Worker) handleGameAction(c *LongConnection, frame *Frame) {
	action, err := parseAction(frame)
	if err != nil {
		atomic.AddInt64(&w.stats.messageErrors, 1)
		c.Send(ErrorResponseFrame(frame.RequestID, frame.Cmd, err))
		return
	}

	engine, ok := w.rm.GetUserEngine(c.UserID)
	if !ok {
		c.Send(ErrorResponseFrame(frame.RequestID, frame.Cmd,
			game.NewGameError(game.CodeRoomNotFound, "没有进行中的对局")))
		return
	}

	requestID, cmd := frame.RequestID, frame.Cmd
	engine.SubmitAction(c.UserID, action, func(err error) {
		if err != nil {
			c.Send(ErrorResponseFrame(requestID, cmd, err))
			return
		}
		c.Send(ResponseFrame(requestID, cmd, map[string]bool{"ok": true}))
	})
}

func parseAction(frame *Frame) (game.PlayerAction, error) {
	var action game.PlayerAction
	switch frame.Cmd {
	case "play":
		var p playPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return action, errInvalidFrame
		}
		tile, err := game.ParseTile(p.Tile)
		if err != nil {
			return action, game.NewGameError(game.CodeInvalidInput, "%v", err)
		}
		return game.PlayerAction{Kind: game.ActionPlay, Tile: tile}, nil

	case "peng":
		var p pengPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return action, errInvalidFrame
		}
		tile, err := game.ParseTile(p.Tile)
		if err != nil {
			return action, game.NewGameError(game.CodeInvalidInput, "%v", err)
		}
		return game.PlayerAction{Kind: game.ActionPeng, Tile: tile}, nil

	case "gang":
		var p gangPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return action, errInvalidFrame
		}
		tile, err := game.ParseTile(p.Tile)
		if err != nil {
			return action, game.NewGameError(game.CodeInvalidInput, "%v", err)
		}
		kind := game.GangKind(p.GangType)
		switch kind {
		case game.GangAn, game.GangMing, game.GangBu, "":
		default:
			return action, game.NewGameError(game.CodeInvalidInput, "未知杠类型: %s", p.GangType)
		}
		return game.PlayerAction{Kind: game.ActionGang, Tile: tile, GangKind: kind}, nil

	case "chi":
		var p chiPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return action, errInvalidFrame
		}
		seq := make([]game.Tile, 0, 3)
		for _, s := range p.Sequence {
			t, err := game.ParseTile(s)
			if err != nil {
				return action, game.NewGameError(game.CodeInvalidInput, "%v", err)
			}
			seq = append(seq, t)
		}
		tile, err := game.ParseTile(p.Tile)
		if err != nil {
			return action, game.NewGameError(game.CodeInvalidInput, "%v", err)
		}
		return game.PlayerAction{Kind: game.ActionChi, Tile: tile, Sequence: seq}, nil

	case "hu":
		var p huPayload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			return action, errInvalidFrame
		}
		var tile game.Tile
		if p.WinningTile != "" {
			t, err := game.ParseTile(p.WinningTile)
			if err != nil {
				return action, game.NewGameError(game.CodeInvalidInput, "%v", err)
			}
			tile = t
		}
		return game.PlayerAction{Kind: game.ActionHu, Tile: tile, SelfDraw: p.SelfDraw}, nil

	case "pass":
		return game.PlayerAction{Kind: game.ActionPass}, nil
	}
	return action, errInvalidFrame
}

// Stats 网关统计
func (w *Worker) Stats() (connections int32, processed, errCount int64) {
	return atomic.LoadInt32(&w.stats.currentConnections),
		atomic.LoadInt64(&w.stats.messageProcessed),
		atomic.LoadInt64(&w.stats.messageErrors)
}
