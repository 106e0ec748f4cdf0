package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr       string
	Port             string
	DatabasePath     string
	SessionSecret    string
	GinMode          string
	SiteBaseURL      string
	WebhookSecret    string
	WebhookMaxSkew   time.Duration
	AdminAPIKey      string
	AdminAPIKeyHash  string
	AMQPURL          string
	AMQPExchange     string
	NotificationURLs []string
	LogLevel         string
	LogFormat        string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 本地开发时先加载 .env 文件。
func Load() AppConfig {
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	maxSkew := 5 * time.Minute
	if raw := strings.TrimSpace(os.Getenv("WEBHOOK_MAX_SKEW")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			maxSkew = d
		}
	}

	return AppConfig{
		ListenAddr:       listenAddr,
		Port:             port,
		DatabasePath:     getEnv("DATABASE_PATH", "foliopulse.db"),
		SessionSecret:    getEnv("SESSION_SECRET", "foliopulse-dev-secret"),
		GinMode:          getEnv("GIN_MODE", "release"),
		SiteBaseURL:      getEnv("SITE_BASE_URL", "https://foliopulse.dev"),
		WebhookSecret:    strings.TrimSpace(os.Getenv("WEBHOOK_SECRET")),
		WebhookMaxSkew:   maxSkew,
		AdminAPIKey:      strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),
		AdminAPIKeyHash:  strings.TrimSpace(os.Getenv("ADMIN_API_KEY_HASH")),
		AMQPURL:          strings.TrimSpace(os.Getenv("AMQP_URL")),
		AMQPExchange:     getEnv("AMQP_EXCHANGE", "foliopulse.jobs"),
		NotificationURLs: splitList(os.Getenv("NOTIFICATION_URLS")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
