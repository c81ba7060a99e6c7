package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	DBDriver string // sqlite | postgres
	DBDSN    string
	MediaDir string
	LogFile  string

	RedisAddr string
	CacheTTL  time.Duration
	AMQPURL   string

	AdminEmail    string
	AdminPassword string
	SessionTTL    time.Duration

	DeliveryCharge float64
	SeedDemo       bool
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	driver := strings.ToLower(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "storefront.db"
	} // sqlite file in project root
	media := os.Getenv("MEDIA_DIR")
	if media == "" {
		media = "./web/media"
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./storefront.log"
	}

	cfg := Config{
		Port:           port,
		DBDriver:       driver,
		DBDSN:          dsn,
		MediaDir:       media,
		LogFile:        logFile,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		CacheTTL:       envDuration("CACHE_TTL", 5*time.Minute),
		AMQPURL:        os.Getenv("AMQP_URL"),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		SessionTTL:     envDuration("SESSION_TTL", 7*24*time.Hour),
		DeliveryCharge: envFloat("DELIVERY_CHARGE", 10),
		SeedDemo:       envBool("SEED_DEMO", true),
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s REDIS_ADDR=%s AMQP_URL=%s ADMIN_EMAIL=%s",
		cfg.Port, cfg.DBDriver, redact(cfg.DBDSN), cfg.MediaDir, cfg.LogFile, cfg.RedisAddr, redact(cfg.AMQPURL), cfg.AdminEmail)
	return cfg
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[config] ignoring invalid %s=%q", key, v)
		return fallback
	}
	return d
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		log.Printf("[config] ignoring invalid %s=%q", key, v)
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

// redact hides the userinfo part of URL-style DSNs.
func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
