package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"sanma/common/log"
)

const roomIDAttempts = 10

// RoomManagerDeps 房间管理器依赖
type RoomManagerDeps struct {
	Bus       Broadcaster
	Live      LiveStore
	Records   RecordStore
	Publisher EventPublisher

	MaxActiveRoomsPerOwner int
	CleanupInterval        time.Duration
	InactiveThreshold      time.Duration
	GracePeriod            time.Duration
}

// RoomManager 房间注册表
// 持有 roomID→Room 与 userID→roomID 双向路由；引擎生命周期由这里托管
// 广播一律在释放 rm.mu 之后执行：会话层推送时会回查房间，持锁广播会互锁
type RoomManager struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	userRoom map[int64]string
	rng      *rand.Rand

	deps RoomManagerDeps
}

func NewRoomManager(deps RoomManagerDeps) *RoomManager {
	if deps.MaxActiveRoomsPerOwner <= 0 {
		deps.MaxActiveRoomsPerOwner = 3
	}
	if deps.CleanupInterval <= 0 {
		deps.CleanupInterval = 5 * time.Minute
	}
	if deps.InactiveThreshold <= 0 {
		deps.InactiveThreshold = 30 * time.Minute
	}
	if deps.Bus == nil {
		deps.Bus = NopBroadcaster{}
	}
	if deps.Live == nil {
		deps.Live = NopLiveStore{}
	}
	if deps.Records == nil {
		deps.Records = NopRecordStore{}
	}
	if deps.Publisher == nil {
		deps.Publisher = NopPublisher{}
	}
	return &RoomManager{
		rooms:    make(map[string]*Room),
		userRoom: make(map[int64]string),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		deps:     deps,
	}
}

// CreateRoom 创建房间：6 位数字 ID 随机抽取，最多尝试 10 次
func (rm *RoomManager) CreateRoom(ownerUserID int64, cfg Config) (*Room, error) {
	if err := cfg.Validate(); err != nil {
		return nil, NewGameError(CodeInvalidInput, "规则配置非法: %v", err)
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	if roomID, ok := rm.userRoom[ownerUserID]; ok {
		return nil, NewGameError(CodeInvalidInput, "用户 %d 已在房间 %s 中", ownerUserID, roomID)
	}
	owned := 0
	for _, room := range rm.rooms {
		if room.OwnerUserID == ownerUserID {
			owned++
		}
	}
	if owned >= rm.deps.MaxActiveRoomsPerOwner {
		return nil, NewGameError(CodeInvalidInput, "用户 %d 的活跃房间数已达上限", ownerUserID)
	}

	var roomID string
	for i := 0; i < roomIDAttempts; i++ {
		candidate := fmt.Sprintf("%06d", rm.rng.Intn(900000)+100000)
		if _, exists := rm.rooms[candidate]; !exists {
			roomID = candidate
			break
		}
	}
	if roomID == "" {
		return nil, NewGameError(CodeRoomIdExhausted, "房间号分配失败")
	}

	room := NewRoom(roomID, ownerUserID, cfg)
	rm.rooms[roomID] = room
	rm.userRoom[ownerUserID] = roomID
	rm.saveSummary(room)
	rm.savePlayerSession(ownerUserID, roomID)

	log.Info("创建房间 %s, 房主 %d", roomID, ownerUserID)
	return room, nil
}

// JoinRoom 加入房间；已在别的活跃房间中会被拒绝
func (rm *RoomManager) JoinRoom(userID int64, roomID string) (*Room, int, error) {
	rm.mu.Lock()

	if existing, ok := rm.userRoom[userID]; ok && existing != roomID {
		rm.mu.Unlock()
		return nil, -1, NewGameError(CodeInvalidInput, "用户 %d 已在房间 %s 中", userID, existing)
	}
	room, ok := rm.rooms[roomID]
	if !ok {
		rm.mu.Unlock()
		return nil, -1, NewGameError(CodeRoomNotFound, "房间 %s 不存在", roomID)
	}

	seat, err := room.Join(userID)
	if err != nil {
		rm.mu.Unlock()
		return nil, -1, err
	}
	rm.userRoom[userID] = roomID
	rm.saveSummary(room)
	rm.savePlayerSession(userID, roomID)
	rm.mu.Unlock()

	rm.deps.Bus.PushToRoom(roomID, EventUserJoined, SeatUserDTO{Seat: seat, UserID: userID})
	return room, seat, nil
}

// LeaveRoom 退出房间；对局中的退出交给引擎按断线处理
func (rm *RoomManager) LeaveRoom(userID int64) error {
	rm.mu.Lock()

	roomID, ok := rm.userRoom[userID]
	if !ok {
		rm.mu.Unlock()
		return NewGameError(CodeRoomNotFound, "用户 %d 不在任何房间中", userID)
	}
	room := rm.rooms[roomID]
	if room == nil {
		delete(rm.userRoom, userID)
		rm.mu.Unlock()
		return NewGameError(CodeRoomNotFound, "房间 %s 不存在", roomID)
	}

	if room.Status == RoomPlaying {
		engine := room.Engine
		rm.mu.Unlock()
		if engine != nil {
			engine.NotifyDisconnect(userID)
		}
		return nil
	}

	empty, err := room.Leave(userID)
	if err != nil {
		rm.mu.Unlock()
		return err
	}
	delete(rm.userRoom, userID)
	rm.deletePlayerSession(userID)

	var dissolved bool
	if empty {
		rm.removeRoomLocked(room)
		dissolved = true
	} else {
		rm.saveSummary(room)
	}
	rm.mu.Unlock()

	rm.deps.Bus.PushToRoom(roomID, EventUserLeft, SeatUserDTO{UserID: userID})
	if dissolved {
		rm.announceDissolved(roomID, "empty")
	}
	return nil
}

// SetReady 设置准备状态；三人齐备自动开局
func (rm *RoomManager) SetReady(userID int64, ready bool) error {
	rm.mu.Lock()

	roomID, ok := rm.userRoom[userID]
	if !ok {
		rm.mu.Unlock()
		return NewGameError(CodeRoomNotFound, "用户 %d 不在任何房间中", userID)
	}
	room := rm.rooms[roomID]
	if room == nil {
		rm.mu.Unlock()
		return NewGameError(CodeRoomNotFound, "房间 %s 不存在", roomID)
	}

	allReady, err := room.SetReady(userID, ready)
	if err != nil {
		rm.mu.Unlock()
		return err
	}
	rm.saveSummary(room)
	if allReady {
		rm.startGameLocked(room)
	}
	rm.mu.Unlock()

	rm.deps.Bus.PushToRoom(roomID, EventUserReady, map[string]any{"userId": userID, "ready": ready})
	return nil
}

// startGameLocked 启动对局引擎（需持有 rm.mu）
func (rm *RoomManager) startGameLocked(room *Room) {
	room.mu.Lock()
	room.Status = RoomPlaying
	room.touch()
	room.mu.Unlock()

	users := room.Users()
	roomID := room.ID
	engine := NewEngine(roomID, room.Config, users, EngineDeps{
		Bus:         rm.deps.Bus,
		Live:        rm.deps.Live,
		Records:     rm.deps.Records,
		Publisher:   rm.deps.Publisher,
		GracePeriod: rm.deps.GracePeriod,
		OnGameOver: func(scores [3]int) {
			rm.onGameOver(roomID, scores)
		},
		OnDissolved: func(reason string) {
			rm.onEngineDissolved(roomID, reason)
		},
	})
	room.Engine = engine
	rm.saveSummary(room)
	engine.Start()
	log.Info("房间 %s 开局, 玩家 %v", roomID, users)
}

// onGameOver 整场结束：房间回到等待状态，准备标记清空
func (rm *RoomManager) onGameOver(roomID string, scores [3]int) {
	rm.mu.Lock()
	room := rm.rooms[roomID]
	if room == nil {
		rm.mu.Unlock()
		return
	}
	room.mu.Lock()
	room.Engine = nil
	room.Status = RoomWaiting
	for _, s := range room.Slots {
		if s != nil {
			s.Ready = false
		}
	}
	room.touch()
	room.mu.Unlock()
	rm.saveSummary(room)
	rm.mu.Unlock()
	log.Info("房间 %s 整场结束, 总分 %v", roomID, scores)
}

// onEngineDissolved 引擎解散后的房间回收
func (rm *RoomManager) onEngineDissolved(roomID string, reason string) {
	rm.mu.Lock()
	room := rm.rooms[roomID]
	if room == nil {
		rm.mu.Unlock()
		return
	}
	rm.removeRoomLocked(room)
	rm.mu.Unlock()
	rm.announceDissolved(roomID, reason)
}

// DissolveRoom 主动解散（房主或管理员）
func (rm *RoomManager) DissolveRoom(roomID string, byUserID int64, admin bool) error {
	rm.mu.Lock()
	room, ok := rm.rooms[roomID]
	if !ok {
		rm.mu.Unlock()
		return NewGameError(CodeRoomNotFound, "房间 %s 不存在", roomID)
	}
	if !admin && room.OwnerUserID != byUserID {
		rm.mu.Unlock()
		return NewGameError(CodeActionNotAvailable, "只有房主可以解散房间")
	}

	if room.Status == RoomPlaying && room.Engine != nil {
		engine := room.Engine
		rm.mu.Unlock()
		// 对局中的解散经引擎队列串行处理
		engine.AdminDissolve()
		return nil
	}
	rm.removeRoomLocked(room)
	rm.mu.Unlock()
	rm.announceDissolved(roomID, "owner")
	return nil
}

// VoteDissolve 对局中的解散投票
func (rm *RoomManager) VoteDissolve(userID int64, respond func(error)) error {
	engine, ok := rm.GetUserEngine(userID)
	if !ok {
		return NewGameError(CodeRoomNotFound, "用户 %d 没有进行中的对局", userID)
	}
	engine.VoteDissolve(userID, respond)
	return nil
}

// removeRoomLocked 回收房间与路由（需持有 rm.mu；广播由调用方在锁外做）
func (rm *RoomManager) removeRoomLocked(room *Room) {
	room.mu.Lock()
	room.Status = RoomDissolved
	if room.Engine != nil {
		room.Engine.Close()
		room.Engine = nil
	}
	slots := room.Slots
	room.mu.Unlock()

	for _, s := range slots {
		if s != nil {
			delete(rm.userRoom, s.UserID)
			rm.deletePlayerSession(s.UserID)
		}
	}
	delete(rm.rooms, room.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	_ = rm.deps.Live.DeleteRoom(ctx, room.ID)
	cancel()
}

func (rm *RoomManager) announceDissolved(roomID, reason string) {
	rm.deps.Bus.PushToRoom(roomID, EventRoomDissolved, map[string]string{"roomId": roomID, "reason": reason})
	log.Info("房间 %s 已解散: %s", roomID, reason)
}

// GetRoom 查房间
func (rm *RoomManager) GetRoom(roomID string) (*Room, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	room, ok := rm.rooms[roomID]
	return room, ok
}

// GetUserRoom 查用户所在房间
func (rm *RoomManager) GetUserRoom(userID int64) (*Room, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	roomID, ok := rm.userRoom[userID]
	if !ok {
		return nil, false
	}
	room, ok := rm.rooms[roomID]
	return room, ok
}

// GetUserEngine 查用户所在对局引擎
func (rm *RoomManager) GetUserEngine(userID int64) (*Engine, bool) {
	room, ok := rm.GetUserRoom(userID)
	if !ok {
		return nil, false
	}
	room.mu.RLock()
	defer room.mu.RUnlock()
	if room.Engine == nil {
		return nil, false
	}
	return room.Engine, true
}

// Stats 房间数与在座玩家数
func (rm *RoomManager) Stats() (roomCount, playerCount int) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms), len(rm.userRoom)
}

// StartSweeper 周期清理长期不活跃的等待房间
func (rm *RoomManager) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(rm.deps.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rm.sweep()
			}
		}
	}()
}

func (rm *RoomManager) sweep() {
	rm.mu.Lock()
	now := time.Now()
	var removed []string
	for _, room := range rm.rooms {
		room.mu.RLock()
		stale := (room.Status == RoomWaiting || room.Status == RoomReady) &&
			now.Sub(room.LastActivityAt) > rm.deps.InactiveThreshold
		room.mu.RUnlock()
		if stale {
			rm.removeRoomLocked(room)
			removed = append(removed, room.ID)
		}
	}
	rm.mu.Unlock()

	for _, roomID := range removed {
		rm.announceDissolved(roomID, "inactive")
	}
}

func (rm *RoomManager) saveSummary(room *Room) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rm.deps.Live.SaveRoomSummary(ctx, room.Summary()); err != nil {
		log.Warn("房间 %s 摘要写入失败: %v", room.ID, err)
	}
}

func (rm *RoomManager) savePlayerSession(userID int64, roomID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rm.deps.Live.SavePlayerSession(ctx, userID, roomID); err != nil {
		log.Warn("用户 %d 会话路由写入失败: %v", userID, err)
	}
}

func (rm *RoomManager) deletePlayerSession(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = rm.deps.Live.DeletePlayerSession(ctx, userID)
}
