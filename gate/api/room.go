package api

import (
	"sanma/common/http"
	"sanma/game"
)

func currentUser(c *http.Context) (int64, bool) {
	userID := c.GetInt64("userID")
	if userID == 0 {
		c.Unauthorized("")
		return 0, false
	}
	return userID, true
}

func replyGameError(c *http.Context, err error) {
	if ge, ok := err.(*game.GameError); ok {
		c.Error(string(ge.Code), ge.Message)
		return
	}
	c.InternalServerError(err.Error())
}

// createRoomRequest 建房参数，省略字段用缺省规则
type createRoomRequest struct {
	Tiles        string `json:"tiles"`
	AllowPeng    *bool  `json:"allowPeng"`
	AllowGang    *bool  `json:"allowGang"`
	AllowChi     *bool  `json:"allowChi"`
	BaseScore    int    `json:"baseScore"`
	TurnSeconds  int    `json:"turnSeconds"`
	TotalRounds  int    `json:"totalRounds"`
	DismissVotes int    `json:"dismissVotes"`
}

// CreateRoomHandler 创建房间
func CreateRoomHandler(c *http.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return nil
	}

	var req createRoomRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("请求参数错误")
		return nil
	}

	cfg := game.DefaultConfig()
	if req.Tiles != "" {
		cfg.Tiles = game.TileMode(req.Tiles)
	}
	if req.AllowPeng != nil {
		cfg.AllowPeng = *req.AllowPeng
	}
	if req.AllowGang != nil {
		cfg.AllowGang = *req.AllowGang
	}
	if req.AllowChi != nil {
		cfg.AllowChi = *req.AllowChi
	}
	if req.BaseScore > 0 {
		cfg.Score.BaseScore = req.BaseScore
	}
	if req.TurnSeconds > 0 {
		cfg.Turn.TurnSeconds = req.TurnSeconds
	}
	if req.TotalRounds > 0 {
		cfg.TotalRounds = req.TotalRounds
	}
	if req.DismissVotes > 0 {
		cfg.DismissVotes = req.DismissVotes
	}

	room, err := deps.Rooms.CreateRoom(userID, cfg)
	if err != nil {
		replyGameError(c, err)
		return nil
	}
	c.Success(room.Summary())
	return nil
}

type joinRoomRequest struct {
	RoomID string `json:"roomId" binding:"required"`
}

// JoinRoomHandler 加入房间
func JoinRoomHandler(c *http.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return nil
	}
	var req joinRoomRequest
	if err := c.BindJSON(&req); err != nil || len(req.RoomID) != 6 {
		c.BadRequest("房间号必须是 6 位数字")
		return nil
	}

	room, seat, err := deps.Rooms.JoinRoom(userID, req.RoomID)
	if err != nil {
		replyGameError(c, err)
		return nil
	}
	c.Success(map[string]any{"room": room.Summary(), "seat": seat})
	return nil
}

// LeaveRoomHandler 离开房间
func LeaveRoomHandler(c *http.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return nil
	}
	if err := deps.Rooms.LeaveRoom(userID); err != nil {
		replyGameError(c, err)
		return nil
	}
	c.Success(nil)
	return nil
}

type readyRequest struct {
	Ready bool `json:"ready"`
}

// ReadyHandler 准备/取消准备；三人齐备自动开局
func ReadyHandler(c *http.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return nil
	}
	var req readyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("请求参数错误")
		return nil
	}
	if err := deps.Rooms.SetReady(userID, req.Ready); err != nil {
		replyGameError(c, err)
		return nil
	}
	c.Success(nil)
	return nil
}

// DissolveRoomHandler 房主解散（等待中直接解散，对局中发起投票）
func DissolveRoomHandler(c *http.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return nil
	}
	room, found := deps.Rooms.GetUserRoom(userID)
	if !found {
		c.NotFound("不在任何房间中")
		return nil
	}

	if room.Status == game.RoomPlaying {
		err := deps.Rooms.VoteDissolve(userID, nil)
		if err != nil {
			replyGameError(c, err)
			return nil
		}
		c.Success(map[string]string{"mode": "vote"})
		return nil
	}

	if err := deps.Rooms.DissolveRoom(room.ID, userID, false); err != nil {
		replyGameError(c, err)
		return nil
	}
	c.Success(map[string]string{"mode": "dissolved"})
	return nil
}

// GetRoomHandler 查房间摘要；本地没有则回源实时 KV
func GetRoomHandler(c *http.Context) error {
	if _, ok := currentUser(c); !ok {
		return nil
	}
	roomID := c.GetParam("id")
	if len(roomID) != 6 {
		c.BadRequest("房间号必须是 6 位数字")
		return nil
	}

	if room, ok := deps.Rooms.GetRoom(roomID); ok {
		c.Success(room.Summary())
		return nil
	}
	if deps.Live != nil {
		if sum, err := deps.Live.GetRoomSummary(c.Request().Context(), roomID); err == nil && sum != nil {
			c.Success(sum)
			return nil
		}
	}
	c.NotFound("房间不存在")
	return nil
}

// MyRoomHandler 查自己所在的房间
func MyRoomHandler(c *http.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return nil
	}
	room, found := deps.Rooms.GetUserRoom(userID)
	if !found {
		c.Success(nil)
		return nil
	}
	c.Success(room.Summary())
	return nil
}
