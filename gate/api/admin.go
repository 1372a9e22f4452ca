package api

import (
	"sanma/common/http"
)

// AdminDissolveHandler 管理侧强制解散房间
func AdminDissolveHandler(c *http.Context) error {
	roomID := c.GetParam("id")
	if len(roomID) != 6 {
		c.BadRequest("房间号必须是 6 位数字")
		return nil
	}
	if err := deps.Rooms.DissolveRoom(roomID, 0, true); err != nil {
		replyGameError(c, err)
		return nil
	}
	c.Success(nil)
	return nil
}

// AdminStatsHandler 节点负载与连接统计
func AdminStatsHandler(c *http.Context) error {
	rooms, players := deps.Rooms.Stats()
	connections, processed, errCount := deps.WS.Stats()

	stats := map[string]any{
		"rooms":             rooms,
		"players":           players,
		"connections":       connections,
		"messagesProcessed": processed,
		"messageErrors":     errCount,
	}
	if deps.Monitor != nil {
		load := deps.Monitor.Latest()
		stats["load"] = load
		stats["loadScore"] = load.CalculateLoad()
	}
	c.Success(stats)
	return nil
}
