package config

import (
	"fmt"
	"strings"

	"sanma/common/log"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Conf 全局配置，Load 成功后只读（LogConf.Level 支持热更新）
var Conf ServerConfiguration

type ServerConfiguration struct {
	ID           string       `mapstructure:"id"`
	HttpPort     int          `mapstructure:"httpPort"`
	WsPath       string       `mapstructure:"wsPath"`
	LogConf      LogConf      `mapstructure:"log"`
	JwtConf      JwtConf      `mapstructure:"jwt"`
	DatabaseConf DatabaseConf `mapstructure:"database"`
	NatsConf     NatsConf     `mapstructure:"nats"`
	EtcdConf     EtcdConf     `mapstructure:"etcd"`
	RoomConf     RoomConf     `mapstructure:"room"`
	SessionConf  SessionConf  `mapstructure:"session"`
}

type LogConf struct {
	Level string `mapstructure:"level"`
}

type JwtConf struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"`
}

type DatabaseConf struct {
	MongoConf MongoConf `mapstructure:"mongo"`
	RedisConf RedisConf `mapstructure:"redis"`
}

type MongoConf struct {
	Url         string `mapstructure:"url"`
	Db          string `mapstructure:"db"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	MinPoolSize int    `mapstructure:"minPoolSize"`
	MaxPoolSize int    `mapstructure:"maxPoolSize"`
}

type RedisConf struct {
	Addr         string   `mapstructure:"addr"`
	ClusterAddrs []string `mapstructure:"clusterAddrs"`
	Password     string   `mapstructure:"password"`
	PoolSize     int      `mapstructure:"poolSize"`
	MinIdleConns int      `mapstructure:"minIdleConns"`
	LiveTTL      int      `mapstructure:"liveTTL"` // 实时状态键的 TTL（秒）
}

type NatsConf struct {
	URL string `mapstructure:"url"`
}

type EtcdConf struct {
	Addrs       []string       `mapstructure:"addrs"`
	DialTimeout int            `mapstructure:"dialTimeout"`
	Register    RegisterServer `mapstructure:"register"`
}

type RegisterServer struct {
	Name    string `mapstructure:"name"`
	Addr    string `mapstructure:"addr"`
	Version string `mapstructure:"version"`
	Weight  int    `mapstructure:"weight"`
	Ttl     int    `mapstructure:"ttl"`
}

// RoomConf 房间管理相关配置
type RoomConf struct {
	MaxActiveRoomsPerOwner int `mapstructure:"maxActiveRoomsPerOwner"`
	CleanupIntervalMinutes int `mapstructure:"cleanupIntervalMinutes"`
	InactiveThresholdMin   int `mapstructure:"inactiveThresholdMinutes"`
}

// SessionConf 连接会话相关配置
type SessionConf struct {
	GracePeriodSeconds  int `mapstructure:"gracePeriodSeconds"`
	MaxReconnectMinutes int `mapstructure:"maxReconnectMinutes"`
	MaxConnections      int `mapstructure:"maxConnections"`
	ConnectRatePerSec   int `mapstructure:"connectRatePerSec"`
}

func Load(configFile string) error {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	var cfg ServerConfiguration
	if err := v.Unmarshal(&cfg); err != nil {
		return err
	}
	if err := fillDefaults(&cfg); err != nil {
		return err
	}
	Conf = cfg

	// 日志级别热更新
	v.WatchConfig()
	v.OnConfigChange(func(in fsnotify.Event) {
		var next ServerConfiguration
		if err := v.Unmarshal(&next); err != nil {
			return
		}
		if next.LogConf.Level != Conf.LogConf.Level {
			Conf.LogConf.Level = next.LogConf.Level
			log.SetLevel(next.LogConf.Level)
		}
	})

	return nil
}

func fillDefaults(cfg *ServerConfiguration) error {
	if cfg.ID == "" {
		return fmt.Errorf("配置缺少 id")
	}
	if cfg.JwtConf.Secret == "" {
		return fmt.Errorf("配置缺少 jwt.secret")
	}
	if cfg.HttpPort == 0 {
		cfg.HttpPort = 8080
	}
	if cfg.WsPath == "" {
		cfg.WsPath = "/ws"
	}
	if cfg.LogConf.Level == "" {
		cfg.LogConf.Level = "info"
	}
	if cfg.DatabaseConf.RedisConf.LiveTTL == 0 {
		cfg.DatabaseConf.RedisConf.LiveTTL = 600
	}
	if cfg.RoomConf.MaxActiveRoomsPerOwner == 0 {
		cfg.RoomConf.MaxActiveRoomsPerOwner = 3
	}
	if cfg.RoomConf.CleanupIntervalMinutes == 0 {
		cfg.RoomConf.CleanupIntervalMinutes = 5
	}
	if cfg.RoomConf.InactiveThresholdMin == 0 {
		cfg.RoomConf.InactiveThresholdMin = 30
	}
	if cfg.SessionConf.GracePeriodSeconds == 0 {
		cfg.SessionConf.GracePeriodSeconds = 30
	}
	if cfg.SessionConf.MaxReconnectMinutes == 0 {
		cfg.SessionConf.MaxReconnectMinutes = 5
	}
	if cfg.SessionConf.MaxConnections == 0 {
		cfg.SessionConf.MaxConnections = 100000
	}
	if cfg.SessionConf.ConnectRatePerSec == 0 {
		cfg.SessionConf.ConnectRatePerSec = 200
	}
	return nil
}
