package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=agora port=5432 sslmode=disable TimeZone=UTC"

// Config 应用配置
type Config struct {
	Port         string
	DBDriver     string // postgres | sqlite
	DatabaseURL  string
	LogMode      string // dev | prod | test
	TagCacheSize int
	TagCacheTTL  time.Duration
	CORSOrigins  []string

	// Problems lists keys whose values could not be parsed and fell back to defaults.
	Problems []string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	// .env is optional; values already in the environment win.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL: getEnv("DATABASE_URL", defaultDSN),
		LogMode:     getEnv("LOG_MODE", "dev"),
	}
	cfg.TagCacheSize = cfg.intEnv("TAG_CACHE_SIZE", 64)
	cfg.TagCacheTTL = cfg.durationEnv("TAG_CACHE_TTL", 10*time.Minute)
	cfg.CORSOrigins = listEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	return cfg
}

func (c *Config) intEnv(key string, def int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		c.Problems = append(c.Problems, key)
		return def
	}
	return v
}

func (c *Config) durationEnv(key string, def time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		c.Problems = append(c.Problems, key)
		return def
	}
	return v
}

// listEnv splits a comma separated value, dropping blanks.
func listEnv(key, defaultValue string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, defaultValue), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// getEnv 获取环境变量，不存在时返回默认值
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
