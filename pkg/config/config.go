package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Env         string
	LogLevel    string
	PostgresURL string
	MongoURI    string
	MetricsPort string
	NodeID      int64
	CacheWindow int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		PostgresURL: getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:    getEnv("MONGO_URI", ""),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		NodeID:      getEnvInt("NODE_ID", 0),
		CacheWindow: int(getEnvInt("CACHE_WINDOW", 0)),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
