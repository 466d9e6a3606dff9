package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	App       AppConfig       `mapstructure:"app" yaml:"app"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	JWT       JWTConfig       `mapstructure:"jwt" yaml:"jwt"`
	Content   ContentConfig   `mapstructure:"content" yaml:"content"`
	Cron      CronConfig      `mapstructure:"cron" yaml:"cron"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Websocket WebsocketConfig `mapstructure:"websocket" yaml:"websocket"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name           string     `mapstructure:"name" yaml:"name"`
	Mode           string     `mapstructure:"mode" yaml:"mode"`
	Port           int        `mapstructure:"port" yaml:"port"`
	MachineID      int64      `mapstructure:"machine_id" yaml:"machine_id"`
	Cors           CorsConfig `mapstructure:"cors" yaml:"cors"`
	TrustedProxies []string   `mapstructure:"trusted_proxies" yaml:"trusted_proxies"` // 为空时不信任 X-Forwarded-For
}

// JWTConfig JWT配置
type JWTConfig struct {
	SecretKey            string `mapstructure:"secret_key" yaml:"secret_key"`
	AccessExpireSeconds  int    `mapstructure:"access_expire_seconds" yaml:"access_expire_seconds"`
	RefreshExpireSeconds int    `mapstructure:"refresh_expire_seconds" yaml:"refresh_expire_seconds"`
	BufferSeconds        int    `mapstructure:"buffer_seconds" yaml:"buffer_seconds"`
	Issuer               string `mapstructure:"issuer" yaml:"issuer"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver         string `mapstructure:"driver" yaml:"driver"` // sqlite | postgres | mysql
	DSN            string `mapstructure:"dsn" yaml:"dsn"`
	Host           string `mapstructure:"host" yaml:"host"`
	Port           int    `mapstructure:"port" yaml:"port"`
	Username       string `mapstructure:"username" yaml:"username"`
	Password       string `mapstructure:"password" yaml:"password"`
	Database       string `mapstructure:"database" yaml:"database"`
	Charset        string `mapstructure:"charset" yaml:"charset"`
	SSLMode        string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns   int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
	ConnectRetries uint   `mapstructure:"connect_retries" yaml:"connect_retries"`
}

// BuildDSN 获取数据库连接字符串，显式配置的dsn优先
func (c *DatabaseConfig) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	switch c.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
			c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
	default:
		return c.Database
	}
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled" yaml:"enabled"`
	Host         string `mapstructure:"host" yaml:"host"`
	Port         int    `mapstructure:"port" yaml:"port"`
	Password     string `mapstructure:"password" yaml:"password"`
	DB           int    `mapstructure:"db" yaml:"db"`
	PoolSize     int    `mapstructure:"pool_size" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns" yaml:"min_idle_conns"`
}

// Addr 获取Redis地址
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Filename   string `mapstructure:"filename" yaml:"filename"`
	MaxSize    int    `mapstructure:"max_size" yaml:"max_size"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
	Stdout     bool   `mapstructure:"stdout" yaml:"stdout"`
}

// ContentConfig 内容过滤配置
type ContentConfig struct {
	SensitiveWords     []string `mapstructure:"sensitive_words" yaml:"sensitive_words"`
	SensitiveWordsFile string   `mapstructure:"sensitive_words_file" yaml:"sensitive_words_file"`
}

// CronConfig 定时任务配置
type CronConfig struct {
	Enabled             bool   `mapstructure:"enabled" yaml:"enabled"`
	NotificationCleanup string `mapstructure:"notification_cleanup" yaml:"notification_cleanup"`
	RetentionDays       int    `mapstructure:"retention_days" yaml:"retention_days"`
	BloomPersist        string `mapstructure:"bloom_persist" yaml:"bloom_persist"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled" yaml:"enabled"`
	RPS     float64 `mapstructure:"rps" yaml:"rps"`
	Burst   int     `mapstructure:"burst" yaml:"burst"`
}

// WebsocketConfig 实时推送配置
type WebsocketConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// CorsConfig 跨域配置
type CorsConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins" yaml:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods" yaml:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers" yaml:"allow_headers"`
	ExposedHeaders   []string `mapstructure:"expose_headers" yaml:"expose_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials" yaml:"allow_credentials"`
}

var (
	// GlobalConfig 全局配置实例，Init之前为默认配置
	GlobalConfig = Default()
	// 配置Viper实例
	viperInstance *viper.Viper

	reloadMu    sync.Mutex
	reloadHooks []func(*Config)
)

// Default 返回默认配置
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:      "social-api",
			Mode:      "debug",
			Port:      3000,
			MachineID: 1,
			Cors: CorsConfig{
				AllowOrigins:   []string{"*"},
				AllowMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
				ExposedHeaders: []string{"X-Request-ID", "X-Token-Expire-Soon"},
			},
		},
		Database: DatabaseConfig{
			Driver:         "sqlite",
			Database:       "social.db",
			Charset:        "utf8mb4",
			SSLMode:        "disable",
			MaxIdleConns:   10,
			MaxOpenConns:   50,
			LogLevel:       "warn",
			ConnectRetries: 3,
		},
		Redis: RedisConfig{
			Host:     "127.0.0.1",
			Port:     6379,
			PoolSize: 20,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    100,
			MaxAge:     30,
			MaxBackups: 7,
			Stdout:     true,
		},
		JWT: JWTConfig{
			AccessExpireSeconds:  7 * 24 * 3600,
			RefreshExpireSeconds: 30 * 24 * 3600,
			BufferSeconds:        3600,
			Issuer:               "social-api",
		},
		Cron: CronConfig{
			NotificationCleanup: "0 0 3 * * *",
			RetentionDays:       30,
			BloomPersist:        "0 */10 * * * *",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     5,
			Burst:   20,
		},
	}
}

// Init 初始化配置
func Init(configPath string) error {
	// .env 文件可选
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("加载.env文件失败: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	GlobalConfig = cfg
	viperInstance = v
	return nil
}

// Watch 监听配置文件变化，变化后重新解析并通知回调
func Watch() {
	if viperInstance == nil || viperInstance.ConfigFileUsed() == "" {
		return
	}
	viperInstance.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) {
			return
		}
		cfg, err := unmarshal(viperInstance)
		if err != nil {
			return
		}
		GlobalConfig = cfg

		reloadMu.Lock()
		hooks := append([]func(*Config){}, reloadHooks...)
		reloadMu.Unlock()
		for _, hook := range hooks {
			hook(cfg)
		}
	})
	viperInstance.WatchConfig()
}

// OnReload 注册配置重载回调
func OnReload(fn func(*Config)) {
	reloadMu.Lock()
	defer reloadMu.Unlock()
	reloadHooks = append(reloadHooks, fn)
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.Database.Driver)
	}
	if c.App.Mode == "release" && c.JWT.SecretKey == "" {
		return errors.New("生产模式下必须配置 jwt.secret_key")
	}
	return nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &cfg, nil
}

// setDefaults 将默认配置注册到viper，使环境变量在没有配置文件时也能生效
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.mode", d.App.Mode)
	v.SetDefault("app.port", d.App.Port)
	v.SetDefault("app.machine_id", d.App.MachineID)
	v.SetDefault("app.cors.allow_origins", d.App.Cors.AllowOrigins)
	v.SetDefault("app.cors.allow_methods", d.App.Cors.AllowMethods)
	v.SetDefault("app.cors.allow_headers", d.App.Cors.AllowHeaders)
	v.SetDefault("app.cors.expose_headers", d.App.Cors.ExposedHeaders)
	v.SetDefault("app.cors.allow_credentials", d.App.Cors.AllowCredentials)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.username", d.Database.Username)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.database", d.Database.Database)
	v.SetDefault("database.charset", d.Database.Charset)
	v.SetDefault("database.ssl_mode", d.Database.SSLMode)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.log_level", d.Database.LogLevel)
	v.SetDefault("database.connect_retries", d.Database.ConnectRetries)

	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.host", d.Redis.Host)
	v.SetDefault("redis.port", d.Redis.Port)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("redis.min_idle_conns", d.Redis.MinIdleConns)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.filename", d.Log.Filename)
	v.SetDefault("log.max_size", d.Log.MaxSize)
	v.SetDefault("log.max_age", d.Log.MaxAge)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.compress", d.Log.Compress)
	v.SetDefault("log.stdout", d.Log.Stdout)

	v.SetDefault("jwt.secret_key", d.JWT.SecretKey)
	v.SetDefault("jwt.access_expire_seconds", d.JWT.AccessExpireSeconds)
	v.SetDefault("jwt.refresh_expire_seconds", d.JWT.RefreshExpireSeconds)
	v.SetDefault("jwt.buffer_seconds", d.JWT.BufferSeconds)
	v.SetDefault("jwt.issuer", d.JWT.Issuer)

	v.SetDefault("content.sensitive_words", d.Content.SensitiveWords)
	v.SetDefault("content.sensitive_words_file", d.Content.SensitiveWordsFile)

	v.SetDefault("cron.enabled", d.Cron.Enabled)
	v.SetDefault("cron.notification_cleanup", d.Cron.NotificationCleanup)
	v.SetDefault("cron.retention_days", d.Cron.RetentionDays)
	v.SetDefault("cron.bloom_persist", d.Cron.BloomPersist)

	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.rps", d.RateLimit.RPS)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)

	v.SetDefault("websocket.enabled", d.Websocket.Enabled)
}
