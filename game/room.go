package game

import (
	"sync"
	"time"
)

// RoomStatus 房间状态
type RoomStatus string

const (
	RoomWaiting   RoomStatus = "WAITING"
	RoomReady     RoomStatus = "READY"
	RoomPlaying   RoomStatus = "PLAYING"
	RoomDissolved RoomStatus = "DISSOLVED"
)

// Slot 房间座位
type Slot struct {
	UserID int64 `json:"userId"`
	Ready  bool  `json:"ready"`
}

// Room 房间聚合根，独占持有对局引擎
type Room struct {
	ID             string
	OwnerUserID    int64
	Config         Config
	Slots          [3]*Slot
	Status         RoomStatus
	CreatedAt      time.Time
	LastActivityAt time.Time
	Engine         *Engine

	mu sync.RWMutex
}

// RoomSummary 轻量房间摘要（实时 KV 与查询接口共用）
type RoomSummary struct {
	RoomID         string     `json:"roomId"`
	OwnerUserID    int64      `json:"ownerUserId"`
	Status         RoomStatus `json:"status"`
	Players        []int64    `json:"players"`
	ReadyCount     int        `json:"readyCount"`
	LastActivityAt time.Time  `json:"lastActivityAt"`
}

func NewRoom(id string, ownerUserID int64, cfg Config) *Room {
	now := time.Now()
	r := &Room{
		ID:             id,
		OwnerUserID:    ownerUserID,
		Config:         cfg,
		Status:         RoomWaiting,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	r.Slots[0] = &Slot{UserID: ownerUserID}
	return r
}

func (r *Room) touch() {
	r.LastActivityAt = time.Now()
}

// Join 占一个空座位；满 3 人自动进入 READY
func (r *Room) Join(userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status == RoomDissolved {
		return -1, NewGameError(CodeRoomClosed, "房间 %s 已解散", r.ID)
	}
	if r.Status != RoomWaiting {
		return -1, NewGameError(CodeRoomClosed, "房间 %s 不在等待状态", r.ID)
	}
	for _, s := range r.Slots {
		if s != nil && s.UserID == userID {
			return -1, NewGameError(CodeInvalidInput, "用户 %d 已在房间中", userID)
		}
	}
	for i, s := range r.Slots {
		if s == nil {
			r.Slots[i] = &Slot{UserID: userID}
			r.touch()
			if r.seatCountLocked() == 3 {
				r.Status = RoomReady
			}
			return i, nil
		}
	}
	return -1, NewGameError(CodeRoomFull, "房间 %s 已满", r.ID)
}

// Leave 离座；房主离开时房主转给最小座位，空房解散
// 对局进行中离开由引擎按断线处理，不在这里
func (r *Room) Leave(userID int64) (empty bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status == RoomPlaying {
		return false, NewGameError(CodeRoomClosed, "对局进行中不能退出房间")
	}
	seat := -1
	for i, s := range r.Slots {
		if s != nil && s.UserID == userID {
			seat = i
			break
		}
	}
	if seat < 0 {
		return false, NewGameError(CodeRoomNotFound, "用户 %d 不在房间中", userID)
	}

	r.Slots[seat] = nil
	r.touch()
	if r.Status == RoomReady {
		r.Status = RoomWaiting
	}

	if r.seatCountLocked() == 0 {
		r.Status = RoomDissolved
		return true, nil
	}
	if r.OwnerUserID == userID {
		for _, s := range r.Slots {
			if s != nil {
				r.OwnerUserID = s.UserID
				break
			}
		}
	}
	return false, nil
}

// SetReady 设置准备状态；三人都准备返回 true
func (r *Room) SetReady(userID int64, ready bool) (allReady bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Status != RoomWaiting && r.Status != RoomReady {
		return false, NewGameError(CodeRoomClosed, "房间 %s 不在准备阶段", r.ID)
	}
	var slot *Slot
	for _, s := range r.Slots {
		if s != nil && s.UserID == userID {
			slot = s
			break
		}
	}
	if slot == nil {
		return false, NewGameError(CodeRoomNotFound, "用户 %d 不在房间中", userID)
	}
	slot.Ready = ready
	r.touch()

	if r.seatCountLocked() != 3 {
		return false, nil
	}
	for _, s := range r.Slots {
		if s == nil || !s.Ready {
			return false, nil
		}
	}
	return true, nil
}

// Users 座位顺序的用户数组，空座位为 0
func (r *Room) Users() [3]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var users [3]int64
	for i, s := range r.Slots {
		if s != nil {
			users[i] = s.UserID
		}
	}
	return users
}

// HasUser 用户是否在房间内
func (r *Room) HasUser(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.Slots {
		if s != nil && s.UserID == userID {
			return true
		}
	}
	return false
}

// Summary 生成摘要
func (r *Room) Summary() *RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := &RoomSummary{
		RoomID:         r.ID,
		OwnerUserID:    r.OwnerUserID,
		Status:         r.Status,
		LastActivityAt: r.LastActivityAt,
	}
	for _, s := range r.Slots {
		if s != nil {
			sum.Players = append(sum.Players, s.UserID)
			if s.Ready {
				sum.ReadyCount++
			}
		}
	}
	return sum
}

func (r *Room) seatCountLocked() int {
	n := 0
	for _, s := range r.Slots {
		if s != nil {
			n++
		}
	}
	return n
}
