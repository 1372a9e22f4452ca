package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBus 记录推送事件的假广播器
type recordingBus struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	UserID int64 // 0 表示房间广播
	Event  string
	Data   any
}

func (b *recordingBus) PushToUser(userID int64, event string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{UserID: userID, Event: event, Data: data})
}

func (b *recordingBus) PushToRoom(roomID string, event string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Event: event, Data: data})
}

func (b *recordingBus) count(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

func (b *recordingBus) waitFor(t *testing.T, event string, within time.Duration) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if b.count(event) > 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("等待事件 %s 超时", event)
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Turn.TurnSeconds = 1
	cfg.Turn.ActionSeconds = 1
	cfg.Turn.TrusteeTimeoutCount = 2
	cfg.TotalRounds = 1
	return cfg
}

func TestEngineTimeoutPromotesTrustee(t *testing.T) {
	// 无人操作：每个座位超时两次后转入托管，之后对局由托管走完
	bus := &recordingBus{}
	users := [3]int64{101, 102, 103}
	eg := NewEngine("123456", fastConfig(), users, EngineDeps{
		Bus:    bus,
		SeedFn: func() int64 { return 42 },
	})
	defer eg.Close()
	eg.Start()

	bus.waitFor(t, EventTrusteeActivated, 15*time.Second)
	bus.waitFor(t, EventGameEnd, 30*time.Second)

	// 托管激活每个座位只广播一次
	assert.LessOrEqual(t, bus.count(EventTrusteeActivated), 3)
	assert.GreaterOrEqual(t, bus.count(EventTrusteeActivated), 1)
}

func TestEngineReconnectWithinGrace(t *testing.T) {
	// 宽限期内重连：不触发托管，拿到个人视角快照
	bus := &recordingBus{}
	users := [3]int64{101, 102, 103}
	cfg := DefaultConfig()
	cfg.Turn.TurnSeconds = 60
	cfg.Turn.ActionSeconds = 60
	cfg.TotalRounds = 1
	eg := NewEngine("123456", cfg, users, EngineDeps{
		Bus:         bus,
		SeedFn:      func() int64 { return 7 },
		GracePeriod: 30 * time.Second,
	})
	defer eg.Close()
	eg.Start()
	bus.waitFor(t, EventGameStart, 5*time.Second)

	eg.NotifyDisconnect(102)
	bus.waitFor(t, EventDisconnected, 5*time.Second)

	snapCh := make(chan *GameSnapshot, 1)
	errCh := make(chan error, 1)
	eg.NotifyReconnect(102, func(snap *GameSnapshot, err error) {
		snapCh <- snap
		errCh <- err
	})

	select {
	case snap := <-snapCh:
		require.NoError(t, <-errCh)
		require.NotNil(t, snap)
		// 自己的手牌可见，别家只有张数
		assert.NotEmpty(t, snap.Players[1].Hand)
		assert.Empty(t, snap.Players[0].Hand)
		assert.Greater(t, snap.Players[0].HandCount, 0)
	case <-time.After(5 * time.Second):
		t.Fatal("重连响应超时")
	}

	assert.Zero(t, bus.count(EventTrusteeActivated), "宽限期内重连不应触发托管")
	bus.waitFor(t, EventReconnected, 5*time.Second)
}

func TestEngineGraceExpiryPromotesTrustee(t *testing.T) {
	bus := &recordingBus{}
	users := [3]int64{101, 102, 103}
	cfg := DefaultConfig()
	cfg.Turn.TurnSeconds = 60
	cfg.Turn.ActionSeconds = 60
	cfg.TotalRounds = 1
	eg := NewEngine("123456", cfg, users, EngineDeps{
		Bus:         bus,
		SeedFn:      func() int64 { return 9 },
		GracePeriod: 200 * time.Millisecond,
	})
	defer eg.Close()
	eg.Start()
	bus.waitFor(t, EventGameStart, 5*time.Second)

	eg.NotifyDisconnect(102)
	bus.waitFor(t, EventTrusteeActivated, 5*time.Second)
}

func TestEngineDissolveVote(t *testing.T) {
	bus := &recordingBus{}
	users := [3]int64{101, 102, 103}
	cfg := DefaultConfig()
	cfg.Turn.TurnSeconds = 60
	cfg.Turn.ActionSeconds = 60
	cfg.DismissVotes = 2
	dissolved := make(chan string, 1)
	eg := NewEngine("123456", cfg, users, EngineDeps{
		Bus:    bus,
		SeedFn: func() int64 { return 13 },
		OnDissolved: func(reason string) {
			dissolved <- reason
		},
	})
	defer eg.Close()
	eg.Start()
	bus.waitFor(t, EventGameStart, 5*time.Second)

	eg.VoteDissolve(101, nil)
	eg.VoteDissolve(102, nil)

	select {
	case reason := <-dissolved:
		assert.Equal(t, "vote", reason)
	case <-time.After(5 * time.Second):
		t.Fatal("解散投票未生效")
	}
	bus.waitFor(t, EventRoomDissolved, 2*time.Second)
}

func TestEngineRejectsOutsider(t *testing.T) {
	bus := &recordingBus{}
	eg := NewEngine("123456", fastConfig(), [3]int64{101, 102, 103}, EngineDeps{
		Bus:    bus,
		SeedFn: func() int64 { return 3 },
	})
	defer eg.Close()
	eg.Start()
	bus.waitFor(t, EventGameStart, 5*time.Second)

	errCh := make(chan error, 1)
	eg.SubmitAction(999, PlayerAction{Kind: ActionPlay, Tile: Tile{Suit: SuitWan, Rank: 1}}, func(err error) {
		errCh <- err
	})
	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.Equal(t, CodeRoomNotFound, CodeOf(err))
	case <-time.After(5 * time.Second):
		t.Fatal("动作响应超时")
	}
}
