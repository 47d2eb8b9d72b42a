package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Gemini      GeminiConfig    `mapstructure:"gemini"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Queue       QueueConfig     `mapstructure:"queue"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Request     RequestConfig   `mapstructure:"request"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Planner     PlannerConfig   `mapstructure:"planner"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// GeminiConfig 文字生成服務設定
type GeminiConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// CacheConfig 回應快取設定
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// QueueConfig 資料變更佇列設定
type QueueConfig struct {
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// RequestConfig 請求本文限制
type RequestConfig struct {
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// StorageConfig 持久化設定
type StorageConfig struct {
	Driver    string         `mapstructure:"driver"`
	KeyPrefix string         `mapstructure:"key_prefix"`
	Redis     RedisConfig    `mapstructure:"redis"`
	Postgres  PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PostgresConfig PostgreSQL 連線設定
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN 組成 lib/pq 格式的連線字串
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

// PlannerConfig 補貨取消與偏好學習的時間設定
type PlannerConfig struct {
	UndoWindow    time.Duration `mapstructure:"undo_window"`
	LearningDelay time.Duration `mapstructure:"learning_delay"`
	LearningEvery int           `mapstructure:"learning_every"`
}

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// LoadConfig 載入設定，.env 不存在時只使用預設值與環境變數
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v, "gemini.api_key", "GEMINI_API_KEY")
	bindEnv(v, "gemini.model", "GEMINI_MODEL")
	bindEnv(v, "gemini.enabled", "GEMINI_ENABLED")
	bindEnv(v, "cache.enabled", "CACHE_ENABLED")
	bindEnv(v, "rate_limit.enabled", "RATE_LIMIT_ENABLED")
	bindEnv(v, "rate_limit.requests", "RATE_LIMIT_REQUESTS")
	bindEnv(v, "rate_limit.window", "RATE_LIMIT_WINDOW")
	bindEnv(v, "storage.driver", "STORAGE_DRIVER")
	bindEnv(v, "storage.redis.addr", "REDIS_ADDR")
	bindEnv(v, "storage.redis.password", "REDIS_PASSWORD")
	bindEnv(v, "storage.redis.db", "REDIS_DB")
	bindEnv(v, "storage.postgres.host", "DB_HOST")
	bindEnv(v, "storage.postgres.port", "DB_PORT")
	bindEnv(v, "storage.postgres.user", "DB_USER")
	bindEnv(v, "storage.postgres.password", "DB_PASSWORD")
	bindEnv(v, "storage.postgres.dbname", "DB_NAME")
	bindEnv(v, "storage.postgres.sslmode", "DB_SSLMODE")
	bindEnv(v, "dedup_window", "DEDUP_WINDOW")
	bindEnv(v, "log_level", "LOG_LEVEL")

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration", "gemini_api_key:", maskAPIKey(config.Gemini.APIKey), "gemini_model:", config.Gemini.Model, "storage:", config.Storage.Driver)

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func bindEnv(v *viper.Viper, key string, env string) {
	_ = v.BindEnv(key, env)
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "meal-planner")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "120s")

	// 文字生成服務
	v.SetDefault("gemini.enabled", true)
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.timeout", "60s")
	v.SetDefault("gemini.max_retries", 1)

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 500)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 隊列設定
	v.SetDefault("queue.max_size", 100)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("request.max_body_bytes", 5*1024*1024) // 5MB，足以容納備份檔

	// 持久化
	v.SetDefault("storage.driver", StorageMemory)
	v.SetDefault("storage.key_prefix", "recipeApp-")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.user", "postgres")
	v.SetDefault("storage.postgres.dbname", "meal_planner")
	v.SetDefault("storage.postgres.sslmode", "disable")

	// 補貨與偏好學習
	v.SetDefault("planner.undo_window", "5s")
	v.SetDefault("planner.learning_delay", "100ms")
	v.SetDefault("planner.learning_every", 5)

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Gemini.Enabled && config.Gemini.BaseURL == "" {
		return fmt.Errorf("gemini base url is required")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證隊列設定
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	switch config.Storage.Driver {
	case StorageMemory:
	case StorageRedis:
		if config.Storage.Redis.Addr == "" {
			return fmt.Errorf("redis address is required")
		}
	case StoragePostgres:
		if config.Storage.Postgres.Host == "" || config.Storage.Postgres.DBName == "" {
			return fmt.Errorf("postgres host and dbname are required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	if config.Planner.UndoWindow <= 0 {
		return fmt.Errorf("invalid undo window")
	}
	if config.Planner.LearningDelay < 0 {
		return fmt.Errorf("invalid learning delay")
	}
	if config.Planner.LearningEvery <= 0 {
		return fmt.Errorf("invalid learning cadence")
	}

	return nil
}
