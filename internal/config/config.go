package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	App struct {
		Env string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	HTTP struct {
		Port string
	}

	Messenger struct {
		VerifyToken     string
		PageAccessToken string
		AppSecret       string
		APIBaseURL      string
	}

	DB struct {
		DSN        string
		SQLitePath string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}
}

func New() *Config {
	cfg := &Config{}

	// App
	cfg.App.Env = getEnvDefault("APP_ENV", "production")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "webhook_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// HTTP
	cfg.HTTP.Port = getEnvDefault("PORT", "3000")

	// Messenger platform
	cfg.Messenger.VerifyToken = getEnvDefault("VERIFY_TOKEN", "duet_verify_token_123")
	cfg.Messenger.PageAccessToken = os.Getenv("PAGE_ACCESS_TOKEN")
	cfg.Messenger.AppSecret = os.Getenv("APP_SECRET")
	cfg.Messenger.APIBaseURL = getEnvDefault("MESSENGER_API_URL", "https://graph.facebook.com/v18.0")

	// Database: MYSQL_DSN takes precedence, otherwise a local sqlite file.
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	cfg.DB.SQLitePath = getEnvDefault("SQLITE_PATH", "duet.db")

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
