package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// ==================== 应用配置 ====================

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	OAuth     OAuthConfig     `mapstructure:"oauth"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"` // OAuth 回调地址前缀
}

// StorageConfig 键值存储配置
// driver: sqlite | postgres | redis | memory
type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	DSN       string `mapstructure:"dsn"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
}

// OAuthConfig 平台授权配置
// exchange: mock（模拟换 Token，默认）| live（真实请求 tokenUrl）
type OAuthConfig struct {
	ClientID string `mapstructure:"client_id"`
	Exchange string `mapstructure:"exchange"`
}

// AuthConfig 管理端登录配置
type AuthConfig struct {
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// SchedulerConfig 自动同步调度配置
type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load 读取配置文件并应用环境变量覆盖
// 查找顺序：./config.yaml -> ./config/config.yaml；找不到则使用默认值
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// 环境变量覆盖，如 SYNC_SERVER_PORT
	v.SetEnvPrefix("SYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("[Config] 未找到配置文件，使用默认配置")
		} else {
			log.Fatalf("[Config] 配置文件读取失败: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("[Config] 配置解析失败: %v", err)
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "storefront.db")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_db", 0)

	v.SetDefault("oauth.client_id", "DEMO_CLIENT_ID")
	v.SetDefault("oauth.exchange", "mock")

	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.password", "admin123")
	v.SetDefault("auth.jwt_secret", "storefront-sync-secret-change-in-production")

	v.SetDefault("scheduler.enabled", true)
}
