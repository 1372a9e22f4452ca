package conn

import (
	"sync"
	"time"

	"sanma/common/log"
	"sanma/game"
)

// disconnectionRecord 断线登记，重连窗口判定依据
type disconnectionRecord struct {
	UserID int64
	RoomID string
	At     time.Time
}

// SessionManager 会话注册表：userID → 连接，断线记录，房间扇出
// 实现 game.Broadcaster；房间成员从 RoomManager 现查，不另存一份
type SessionManager struct {
	mu           sync.RWMutex
	conns        map[int64]*LongConnection
	disconnected map[int64]disconnectionRecord

	maxReconnect time.Duration
	rm           *game.RoomManager
}

func NewSessionManager(maxReconnect time.Duration) *SessionManager {
	if maxReconnect <= 0 {
		maxReconnect = 5 * time.Minute
	}
	return &SessionManager{
		conns:        make(map[int64]*LongConnection),
		disconnected: make(map[int64]disconnectionRecord),
		maxReconnect: maxReconnect,
	}
}

// SetRoomManager 注入房间注册表（构造顺序上后置）
func (sm *SessionManager) SetRoomManager(rm *game.RoomManager) {
	sm.rm = rm
}

// Bind 安装连接；同一用户的旧连接被原子替换并关闭
func (sm *SessionManager) Bind(userID int64, c *LongConnection) {
	sm.mu.Lock()
	old := sm.conns[userID]
	sm.conns[userID] = c
	delete(sm.disconnected, userID)
	sm.mu.Unlock()

	if old != nil && old != c {
		log.Info("用户 %d 重复登录, 踢出旧连接 %s", userID, old.ConnID)
		old.Close()
	}
}

// Unbind 连接断开；玩家在对局中则登记断线记录并通知引擎
func (sm *SessionManager) Unbind(userID int64, c *LongConnection) {
	sm.mu.Lock()
	stored, ok := sm.conns[userID]
	if !ok || (c != nil && stored != c) {
		sm.mu.Unlock()
		return
	}
	delete(sm.conns, userID)

	var engine *game.Engine
	if sm.rm != nil {
		if room, ok := sm.rm.GetUserRoom(userID); ok && room.Status == game.RoomPlaying {
			sm.disconnected[userID] = disconnectionRecord{
				UserID: userID,
				RoomID: room.ID,
				At:     time.Now(),
			}
			if eng, ok := sm.rm.GetUserEngine(userID); ok {
				engine = eng
			}
		}
	}
	sm.mu.Unlock()

	if engine != nil {
		engine.NotifyDisconnect(userID)
	}
}

// CheckReconnect 重连窗口判定
// 有断线记录且超窗 → RECONNECT_WINDOW_EXPIRED；窗口内或无记录 → 放行
func (sm *SessionManager) CheckReconnect(userID int64) error {
	sm.mu.RLock()
	record, ok := sm.disconnected[userID]
	sm.mu.RUnlock()
	if !ok {
		return nil
	}
	if time.Since(record.At) > sm.maxReconnect {
		return game.NewGameError(game.CodeReconnectWindowExpired,
			"断线已超过 %v", sm.maxReconnect)
	}
	return nil
}

// ClearDisconnection 重连成功后清除断线记录
func (sm *SessionManager) ClearDisconnection(userID int64) {
	sm.mu.Lock()
	delete(sm.disconnected, userID)
	sm.mu.Unlock()
}

// Online 用户是否在线
func (sm *SessionManager) Online(userID int64) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	_, ok := sm.conns[userID]
	return ok
}

// PushToUser 实现 game.Broadcaster：单用户定向推送
func (sm *SessionManager) PushToUser(userID int64, event string, data any) {
	sm.mu.RLock()
	c, ok := sm.conns[userID]
	sm.mu.RUnlock()
	if !ok {
		return
	}
	c.Send(EventFrame(event, data))
}

// PushToRoom 实现 game.Broadcaster：对房间成员逐一推送（尽力送达）
func (sm *SessionManager) PushToRoom(roomID string, event string, data any) {
	if sm.rm == nil {
		return
	}
	room, ok := sm.rm.GetRoom(roomID)
	if !ok {
		return
	}
	frame := EventFrame(event, data)
	for _, userID := range room.Users() {
		if userID == 0 {
			continue
		}
		sm.mu.RLock()
		c, online := sm.conns[userID]
		sm.mu.RUnlock()
		if online {
			c.Send(frame)
		}
	}
}
