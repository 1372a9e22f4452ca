package game

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *RoomManager {
	return NewRoomManager(RoomManagerDeps{
		MaxActiveRoomsPerOwner: 3,
		CleanupInterval:        time.Minute,
		InactiveThreshold:      time.Minute,
	})
}

func TestCreateRoomSixDigitID(t *testing.T) {
	rm := newTestManager()
	room, err := rm.CreateRoom(101, DefaultConfig())
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), room.ID)
	assert.Equal(t, int64(101), room.OwnerUserID)
	assert.Equal(t, RoomWaiting, room.Status)
	// 房主占 0 号座位
	require.NotNil(t, room.Slots[0])
	assert.Equal(t, int64(101), room.Slots[0].UserID)
}

func TestCreateRoomRejectsUserAlreadySeated(t *testing.T) {
	rm := newTestManager()
	_, err := rm.CreateRoom(101, DefaultConfig())
	require.NoError(t, err)
	_, err = rm.CreateRoom(101, DefaultConfig())
	require.Error(t, err)
}

func TestJoinRoomAndAutoReady(t *testing.T) {
	rm := newTestManager()
	room, err := rm.CreateRoom(101, DefaultConfig())
	require.NoError(t, err)

	_, seat, err := rm.JoinRoom(102, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, seat)
	assert.Equal(t, RoomWaiting, room.Status)

	_, seat, err = rm.JoinRoom(103, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, seat)
	assert.Equal(t, RoomReady, room.Status, "三人齐自动进入 READY")

	// 第四人进不来
	_, _, err = rm.JoinRoom(104, room.ID)
	require.Error(t, err)
}

func TestJoinRoomRejectsCrossRoom(t *testing.T) {
	rm := newTestManager()
	roomA, err := rm.CreateRoom(101, DefaultConfig())
	require.NoError(t, err)
	roomB, err := rm.CreateRoom(201, DefaultConfig())
	require.NoError(t, err)

	_, _, err = rm.JoinRoom(102, roomA.ID)
	require.NoError(t, err)
	_, _, err = rm.JoinRoom(102, roomB.ID)
	require.Error(t, err, "已在别的房间的用户不能再加入")
}

func TestLeaveTransfersOwnership(t *testing.T) {
	rm := newTestManager()
	room, err := rm.CreateRoom(101, DefaultConfig())
	require.NoError(t, err)
	_, _, err = rm.JoinRoom(102, room.ID)
	require.NoError(t, err)

	require.NoError(t, rm.LeaveRoom(101))
	assert.Equal(t, int64(102), room.OwnerUserID)

	// 全员离开后房间解散
	require.NoError(t, rm.LeaveRoom(102))
	_, exists := rm.GetRoom(room.ID)
	assert.False(t, exists)
}

func TestReadyStartsGame(t *testing.T) {
	rm := newTestManager()
	room, err := rm.CreateRoom(101, DefaultConfig())
	require.NoError(t, err)
	_, _, err = rm.JoinRoom(102, room.ID)
	require.NoError(t, err)
	_, _, err = rm.JoinRoom(103, room.ID)
	require.NoError(t, err)

	require.NoError(t, rm.SetReady(101, true))
	require.NoError(t, rm.SetReady(102, true))
	assert.Equal(t, RoomReady, room.Status)
	require.NoError(t, rm.SetReady(103, true))

	assert.Equal(t, RoomPlaying, room.Status)
	require.NotNil(t, room.Engine)
	room.Engine.Close()
}

func TestMaxActiveRoomsPerOwner(t *testing.T) {
	rm := newTestManager()
	// 建房人同时占座，同一用户再次建房时先被在座校验挡下，不会走到房主上限分支
	_, err := rm.CreateRoom(101, DefaultConfig())
	require.NoError(t, err)
	// 同一用户重复建房先被在座校验挡下
	_, err = rm.CreateRoom(101, DefaultConfig())
	require.Error(t, err)
}

func TestSweepDissolvesInactiveRooms(t *testing.T) {
	rm := newTestManager()
	rm.deps.InactiveThreshold = 10 * time.Millisecond
	room, err := rm.CreateRoom(101, DefaultConfig())
	require.NoError(t, err)

	room.mu.Lock()
	room.LastActivityAt = time.Now().Add(-time.Minute)
	room.mu.Unlock()

	rm.sweep()
	_, exists := rm.GetRoom(room.ID)
	assert.False(t, exists)
	_, inRoom := rm.GetUserRoom(101)
	assert.False(t, inRoom)
}

func TestDissolveRoomOwnerOnly(t *testing.T) {
	rm := newTestManager()
	room, err := rm.CreateRoom(101, DefaultConfig())
	require.NoError(t, err)
	_, _, err = rm.JoinRoom(102, room.ID)
	require.NoError(t, err)

	err = rm.DissolveRoom(room.ID, 102, false)
	require.Error(t, err, "非房主不能解散")

	require.NoError(t, rm.DissolveRoom(room.ID, 101, false))
	_, exists := rm.GetRoom(room.ID)
	assert.False(t, exists)
}
