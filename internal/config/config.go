// Package config 负责从环境变量（可选 .env 文件）加载并校验应用配置。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 支持的数据库驱动。
const (
	DriverMySQL   = "mysql"
	DriverSQLite3 = "sqlite3"
)

// Config 聚合应用的全部配置。
type Config struct {
	App        AppConfig
	Log        LogConfig
	Database   DatabaseConfig
	Migrations MigrationsConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Cache      CacheConfig
	Search     SearchConfig
	CORS       CORSConfig
}

// AppConfig 应用基础配置。
type AppConfig struct {
	Env             string
	Name            string
	Version         string
	Port            int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig 日志配置。
type LogConfig struct {
	Level    string
	Encoding string
}

// DatabaseConfig 数据库连接配置；Driver 为 sqlite3 时只使用 Path。
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	Path     string
}

// MigrationsConfig 迁移文件目录。
type MigrationsConfig struct {
	Dir string
}

// RedisConfig Redis 连接配置（限流器使用）。
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RateLimitConfig 聊天搜索接口的限流配置。
type RateLimitConfig struct {
	Enabled bool
	Rate    int64
	Window  time.Duration
}

// CacheConfig 过滤统计缓存配置；Redis 不可达时退回内存缓存。
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SearchConfig 外部搜索/推荐服务配置。
type SearchConfig struct {
	URL     string
	Timeout time.Duration
}

// CORSConfig 跨域配置。
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// Load 加载配置：先尝试读取 .env（不存在时忽略），再从环境变量解析。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv 仅从当前进程环境变量解析配置。
func FromEnv() (*Config, error) {
	p := &parser{}

	cfg := &Config{
		App: AppConfig{
			Env:             getEnv("APP_ENV", "dev"),
			Name:            getEnv("APP_NAME", "catalog-shop"),
			Version:         getEnv("APP_VERSION", "0.1.0"),
			Port:            p.int("APP_PORT", 8080),
			RequestTimeout:  p.duration("REQUEST_TIMEOUT", 10*time.Second),
			ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
			Host:     getEnv("DB_HOST", "127.0.0.1"),
			Port:     p.int("DB_PORT", 3306),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "catalog_shop"),
			Path:     getEnv("DB_PATH", "catalog.db"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "127.0.0.1"),
			Port:     p.int("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       p.int("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled: p.bool("RATE_LIMIT_ENABLED", false),
			Rate:    int64(p.int("RATE_LIMIT_RATE", 30)),
			Window:  p.duration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Cache: CacheConfig{
			Enabled: p.bool("CACHE_ENABLED", false),
			TTL:     p.duration("CACHE_TTL", 5*time.Minute),
		},
		Search: SearchConfig{
			URL:     getEnv("SEARCH_SERVICE_URL", ""),
			Timeout: p.duration("SEARCH_TIMEOUT", 30*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getList("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders: getList("CORS_ALLOWED_HEADERS", []string{"Content-Type", "X-Request-ID"}),
		},
	}
	cfg.Migrations.Dir = getEnv("MIGRATIONS_DIR", filepath.Join("migrations", cfg.Database.Driver))

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置取值之间的约束。
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite3:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverMySQL, DriverSQLite3, c.Database.Driver)
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.App.Port)
	}
	if c.App.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate <= 0 || c.RateLimit.Window < time.Second) {
		return errors.New("RATE_LIMIT_RATE must be positive and RATE_LIMIT_WINDOW at least 1s")
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_ENCODING must be json or console, got %q", c.Log.Encoding)
	}
	return nil
}

// parser 收集解析错误，便于一次性报告所有非法配置。
type parser struct {
	errs []error
}

func (p *parser) int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (p *parser) bool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
