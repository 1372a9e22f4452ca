package conn

import (
	"testing"
	"time"

	"sanma/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckReconnectWindow(t *testing.T) {
	sm := NewSessionManager(50 * time.Millisecond)

	// 没有断线记录：放行
	require.NoError(t, sm.CheckReconnect(101))

	// 窗口内：放行
	sm.mu.Lock()
	sm.disconnected[101] = disconnectionRecord{UserID: 101, RoomID: "123456", At: time.Now()}
	sm.mu.Unlock()
	require.NoError(t, sm.CheckReconnect(101))

	// 超窗：拒绝并带稳定错误码
	sm.mu.Lock()
	sm.disconnected[101] = disconnectionRecord{UserID: 101, RoomID: "123456", At: time.Now().Add(-time.Second)}
	sm.mu.Unlock()
	err := sm.CheckReconnect(101)
	require.Error(t, err)
	assert.Equal(t, game.CodeReconnectWindowExpired, game.CodeOf(err))
}

func TestClearDisconnection(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	sm.mu.Lock()
	sm.disconnected[101] = disconnectionRecord{UserID: 101, At: time.Now().Add(-time.Hour)}
	sm.mu.Unlock()

	sm.ClearDisconnection(101)
	require.NoError(t, sm.CheckReconnect(101))
}

func TestFrameCodec(t *testing.T) {
	frame := EventFrame("turnChanged", map[string]int{"seat": 1})
	assert.Equal(t, FrameEvent, frame.Type)
	assert.Equal(t, "turnChanged", frame.Cmd)
	assert.NotEmpty(t, frame.Data)

	errFrame := ErrorResponseFrame("req-1", "play", game.NewGameError(game.CodeNotYourTurn, "不是你的回合"))
	assert.Equal(t, FrameError, errFrame.Type)
	require.NotNil(t, errFrame.Error)
	assert.Equal(t, "NOT_YOUR_TURN", errFrame.Error.Code)
}

func TestParseActionPayloads(t *testing.T) {
	cases := []struct {
		cmd  string
		data string
		kind game.ActionKind
	}{
		{"play", `{"tile":"5W"}`, game.ActionPlay},
		{"peng", `{"tile":"5W","claimedFrom":2}`, game.ActionPeng},
		{"gang", `{"tile":"5W","gangType":"AN"}`, game.ActionGang},
		{"chi", `{"tile":"3W","sequence":["3W","4W","5W"]}`, game.ActionChi},
		{"hu", `{"winningTile":"5W","selfDraw":true}`, game.ActionHu},
		{"pass", `{}`, game.ActionPass},
	}
	for _, tc := range cases {
		frame := &Frame{Type: FrameRequest, Cmd: tc.cmd, Data: []byte(tc.data)}
		action, err := parseAction(frame)
		require.NoError(t, err, tc.cmd)
		assert.Equal(t, tc.kind, action.Kind)
	}

	// 非法牌面
	frame := &Frame{Type: FrameRequest, Cmd: "play", Data: []byte(`{"tile":"0X"}`)}
	_, err := parseAction(frame)
	require.Error(t, err)
}
