package api

import (
	"sanma/common/http"
	"sanma/conn"
	"sanma/core/realtime"
	"sanma/core/repository"
	"sanma/game"
)

// Deps 接口层依赖
type Deps struct {
	Rooms   *game.RoomManager
	Live    *realtime.LiveStateStore
	Records repository.GameRecordRepository
	Monitor *game.Monitor
	WS      *conn.Worker
}

var deps Deps

// RegisterRoutes 挂载 REST 路由与长连接入口
func RegisterRoutes(server *http.HttpServer, d Deps) {
	deps = d

	server.Use(http.RecoveryMiddleware(), http.CorsMiddleware(), http.LoggerMiddleware())

	server.GET("/healthz", HealthHandler)
	server.RawHandler("GET", "/ws", d.WS.HandleWS)

	api := server.Group("/api", http.AuthMiddleware())
	{
		api.POST("/room/create", CreateRoomHandler)
		api.POST("/room/join", JoinRoomHandler)
		api.POST("/room/leave", LeaveRoomHandler)
		api.POST("/room/ready", ReadyHandler)
		api.POST("/room/dissolve", DissolveRoomHandler)
		api.GET("/room/mine", MyRoomHandler)
		api.GET("/room/:id", GetRoomHandler)
		api.GET("/history", HistoryListHandler)
		api.GET("/history/:gameId", HistoryDetailHandler)
	}

	admin := server.Group("/api/admin", http.AuthMiddleware(), http.AdminMiddleware())
	{
		admin.POST("/room/:id/dissolve", AdminDissolveHandler)
		admin.GET("/stats", AdminStatsHandler)
	}
}

// HealthHandler 存活探针
func HealthHandler(c *http.Context) error {
	c.Success(map[string]string{"status": "ok"})
	return nil
}
