// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找，敏感项可由 .env / 环境变量覆盖
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName     string `toml:"appName"`     // 应用名称
	Host        string `toml:"host"`        // 监听地址
	Port        int    `toml:"port"`        // 监听端口
	Mode        string `toml:"mode"`        // 运行模式：dev / release
	Storage     string `toml:"storage"`     // 存储后端：mysql / memory
	TLSRedirect bool   `toml:"tlsRedirect"` // 是否启用 HTTP -> HTTPS 重定向
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

// RedisConfig Redis 连接配置，Host 为空时使用进程内缓存
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
	Db       int    `toml:"db"`
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // debug, info, warn, error
}

// KafkaConfig Kafka 配置，notifyConfig.mode = "kafka" 时使用
type KafkaConfig struct {
	HostPort       string        `toml:"hostPort"`
	RoomEventTopic string        `toml:"roomEventTopic"`
	Timeout        time.Duration `toml:"timeout"` // 秒
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret             string `toml:"secret"`
	AccessTokenExpiry  int    `toml:"accessTokenExpiry"`  // 分钟
	RefreshTokenExpiry int    `toml:"refreshTokenExpiry"` // 小时
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 0-1023，分布式部署时每台机器需唯一
}

// NotifyConfig 房间事件对外推送配置
type NotifyConfig struct {
	Mode      string `toml:"mode"`      // http / kafka / asynq / log
	BaseURL   string `toml:"baseURL"`   // 推送服务地址，如 https://ws.example.com/wsServer/notify
	Timeout   int    `toml:"timeout"`   // HTTP 超时（秒）
	Workers   int    `toml:"workers"`   // 异步任务 worker 数
	QueueSize int    `toml:"queueSize"` // 异步任务缓冲区大小
}

// RoomConfig 房间策略配置
type RoomConfig struct {
	SystemAccount string `toml:"systemAccount"` // 课程房间的房主账号（username）
	MaxAdminRooms int    `toml:"maxAdminRooms"` // 单个用户可担任房主的房间上限
}

// AccountConfig 账号子系统配置
type AccountConfig struct {
	AllowedEmailDomain string `toml:"allowedEmailDomain"` // 为空表示不限制
	VerifyLinkBase     string `toml:"verifyLinkBase"`
	ResetLinkBase      string `toml:"resetLinkBase"`
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	RedisConfig     `toml:"redisConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
	NotifyConfig    `toml:"notifyConfig"`
	RoomConfig      `toml:"roomConfig"`
	AccountConfig   `toml:"accountConfig"`
}

var config *Config

// searchPaths 候选配置文件路径（优先加载本地配置）
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml",
	"../../configs/config.toml",
}

// LoadConfig 依次尝试候选路径，找到第一个可用的配置文件即停止
func LoadConfig() error {
	for _, path := range searchPaths {
		if cfg, err := LoadFile(path); err == nil {
			config = cfg
			return nil
		}
	}
	if config == nil {
		config = new(Config)
	}
	config.applyEnv()
	config.applyDefaults()
	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// LoadFile 从指定路径加载配置，并叠加 .env 与环境变量
func LoadFile(path string) (*Config, error) {
	cfg := new(Config)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv 敏感信息不写入配置文件，通过 CHATROOM_* 环境变量注入
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("CHATROOM_MYSQL_PASSWORD"); v != "" {
		c.MysqlConfig.Password = v
	}
	if v := os.Getenv("CHATROOM_REDIS_PASSWORD"); v != "" {
		c.RedisConfig.Password = v
	}
	if v := os.Getenv("CHATROOM_JWT_SECRET"); v != "" {
		c.JWTConfig.Secret = v
	}
	if v := os.Getenv("CHATROOM_NOTIFY_BASE_URL"); v != "" {
		c.NotifyConfig.BaseURL = v
	}
	if v := os.Getenv("CHATROOM_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.MainConfig.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.MainConfig.Mode == "" {
		c.MainConfig.Mode = "dev"
	}
	if c.MainConfig.Storage == "" {
		c.MainConfig.Storage = "mysql"
	}
	if c.NotifyConfig.Mode == "" {
		c.NotifyConfig.Mode = "log"
	}
	if c.NotifyConfig.Timeout <= 0 {
		c.NotifyConfig.Timeout = 5
	}
	if c.NotifyConfig.Workers <= 0 {
		c.NotifyConfig.Workers = 15
	}
	if c.NotifyConfig.QueueSize <= 0 {
		c.NotifyConfig.QueueSize = 3000
	}
	if c.RoomConfig.SystemAccount == "" {
		c.RoomConfig.SystemAccount = "admin"
	}
	if c.RoomConfig.MaxAdminRooms <= 0 {
		c.RoomConfig.MaxAdminRooms = 50
	}
	if c.JWTConfig.AccessTokenExpiry <= 0 {
		c.JWTConfig.AccessTokenExpiry = 15
	}
	if c.JWTConfig.RefreshTokenExpiry <= 0 {
		c.JWTConfig.RefreshTokenExpiry = 168
	}
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件，找不到时使用默认值
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig()
	}
	return config
}
