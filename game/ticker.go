package game

import (
	"sync"
	"time"
)

// TimeoutKind 超时事件种类
type TimeoutKind string

const (
	TimeoutTurn  TimeoutKind = "turn"  // 出牌超时
	TimeoutClaim TimeoutKind = "claim" // 抢牌窗口超时
	TimeoutGrace TimeoutKind = "grace" // 断线宽限期超时
)

// TimeoutEvent 定时器到期事件，投递进房间队列串行处理
// AsOfDeadline 与当前存活的截止时间比对，不一致即为过期定时器，直接丢弃
type TimeoutEvent struct {
	Kind         TimeoutKind
	RoomID       string
	Seat         int
	AsOfDeadline time.Time
}

// Scheduler 截止时间调度器：每个活跃截止时间一个定时器
// 不负责取消竞态，过期判定交给房间 actor
type Scheduler struct {
	roomID string
	post   func(TimeoutEvent)

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func NewScheduler(roomID string, post func(TimeoutEvent)) *Scheduler {
	return &Scheduler{
		roomID: roomID,
		post:   post,
		timers: make(map[string]*time.Timer),
	}
}

func timerKey(kind TimeoutKind, seat int) string {
	return string(kind) + "#" + string(rune('0'+seat))
}

// Arm 设置（或替换）一个截止时间
func (s *Scheduler) Arm(kind TimeoutKind, seat int, deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	key := timerKey(kind, seat)
	if old, ok := s.timers[key]; ok {
		old.Stop()
	}
	ev := TimeoutEvent{Kind: kind, RoomID: s.roomID, Seat: seat, AsOfDeadline: deadline}
	s.timers[key] = time.AfterFunc(time.Until(deadline), func() {
		s.post(ev)
	})
}

// Cancel 尽力取消；已触发的事件由过期判定兜底
func (s *Scheduler) Cancel(kind TimeoutKind, seat int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := timerKey(kind, seat)
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// Close 停掉所有定时器
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = map[string]*time.Timer{}
}
