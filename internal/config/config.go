package config

import (
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Port       string
	DBPath     string
	OracleURL  string // anomaly classification service; empty disables classification
	JWTSecret  string // bearer auth for ingestion; empty disables auth
	RateLimit  int
	RateWindow time.Duration
}

// Load 加载配置
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/points/points.db"
	}

	rateLimit := 300
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rateLimit = n
		}
	}

	return &Config{
		Port:       port,
		DBPath:     dbPath,
		OracleURL:  os.Getenv("ORACLE_URL"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		RateLimit:  rateLimit,
		RateWindow: time.Minute,
	}
}
