package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sanma/common/config"
	"sanma/common/database"
	"sanma/common/discovery"
	commonhttp "sanma/common/http"
	"sanma/common/log"
	"sanma/conn"
	"sanma/core/message"
	"sanma/core/persistence"
	"sanma/core/realtime"
	"sanma/game"
	"sanma/gate/api"

	"github.com/arl/statsviz"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "sanma-server",
	Short: "三人麻将对局服务器",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "config.yaml", "配置文件路径")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	if err := config.Load(configFile); err != nil {
		return err
	}
	log.InitLog(config.Conf.ID, config.Conf.LogConf.Level)
	log.Info("配置加载完成: %s", configFile)

	// 基础设施
	redisManager := database.NewRedis(config.Conf.DatabaseConf.RedisConf)
	defer redisManager.Close()
	mongoManager := database.NewMongo(config.Conf.DatabaseConf.MongoConf)
	defer mongoManager.Close()

	liveStore, err := realtime.NewLiveStateStore(redisManager,
		time.Duration(config.Conf.DatabaseConf.RedisConf.LiveTTL)*time.Second)
	if err != nil {
		return err
	}
	defer liveStore.Close()

	recordRepo := persistence.NewMongoGameRecordRepository(mongoManager)
	recordStore := persistence.NewRecordStoreAdapter(recordRepo)

	publisher, err := message.NewNatsPublisher(config.Conf.NatsConf.URL)
	if err != nil {
		log.Warn("NATS 连接失败, 事件发布降级为空操作: %v", err)
		publisher, _ = message.NewNatsPublisher("")
	}
	defer publisher.Close()

	// 会话层与房间注册表
	sessions := conn.NewSessionManager(
		time.Duration(config.Conf.SessionConf.MaxReconnectMinutes) * time.Minute)
	roomManager := game.NewRoomManager(game.RoomManagerDeps{
		Bus:                    sessions,
		Live:                   liveStore,
		Records:                recordStore,
		Publisher:              publisher,
		MaxActiveRoomsPerOwner: config.Conf.RoomConf.MaxActiveRoomsPerOwner,
		CleanupInterval:        time.Duration(config.Conf.RoomConf.CleanupIntervalMinutes) * time.Minute,
		InactiveThreshold:      time.Duration(config.Conf.RoomConf.InactiveThresholdMin) * time.Minute,
		GracePeriod:            time.Duration(config.Conf.SessionConf.GracePeriodSeconds) * time.Second,
	})
	sessions.SetRoomManager(roomManager)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	roomManager.StartSweeper(ctx)

	monitor := game.NewMonitor(roomManager, time.Minute)
	go monitor.Run(ctx)

	// 可选 etcd 注册
	if len(config.Conf.EtcdConf.Addrs) > 0 {
		register := discovery.NewRegister()
		if err := register.Register(config.Conf.EtcdConf); err != nil {
			log.Warn("etcd 注册失败: %v", err)
		} else {
			defer register.Close()
		}
	}

	// HTTP + WebSocket
	wsWorker := conn.NewWorker(sessions, roomManager)
	server := commonhttp.NewHttpServer(commonhttp.WithPort(config.Conf.HttpPort))
	api.RegisterRoutes(server, api.Deps{
		Rooms:   roomManager,
		Live:    liveStore,
		Records: recordRepo,
		Monitor: monitor,
		WS:      wsWorker,
	})

	debugMux := http.NewServeMux()
	if err := statsviz.Register(debugMux); err == nil {
		server.RawMux("/debug/statsviz", debugMux)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("收到信号 %v, 开始优雅关闭", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
