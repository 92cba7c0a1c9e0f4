package config

import (
	"os"
	"strconv"
	"time"
)

type configLogger interface {
	Panicf(format string, args ...interface{})
}

type Config struct {
	orderServiceURL     string
	dashboardAddr       string
	fetchMode           string
	refreshInterval     time.Duration
	noticeTTL           time.Duration
	telegramBotAPIToken string
	telegramChatID      int64
	logger              configLogger
}

func New(configLogger configLogger) *Config {
	config := Config{logger: configLogger}

	config.orderServiceURL = config.getKeyOrDefault("ORDER_SERVICE_URL", "http://localhost:8080")
	config.dashboardAddr = config.getKeyOrDefault("DASHBOARD_ADDR", ":5000")

	config.fetchMode = config.getKeyOrDefault("FETCH_MODE", "all")
	if config.fetchMode != "all" && config.fetchMode != "selected" {
		config.logger.Panicf("FETCH_MODE must be \"all\" or \"selected\", got %q", config.fetchMode)
	}

	config.refreshInterval = config.getDurationOrDefault("REFRESH_INTERVAL", 0)
	config.noticeTTL = config.getDurationOrDefault("NOTICE_TTL", 3*time.Second)

	config.telegramBotAPIToken = os.Getenv("TELEGRAM_BOT_API_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		parsed, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			config.logger.Panicf("invalid TELEGRAM_CHAT_ID %q", chatID)
		}
		config.telegramChatID = parsed
	}

	return &config
}

func (config *Config) GetOrderServiceURL() string {
	return config.orderServiceURL
}

func (config *Config) GetDashboardAddr() string {
	return config.dashboardAddr
}

func (config *Config) GetFetchMode() string {
	return config.fetchMode
}

func (config *Config) GetRefreshInterval() time.Duration {
	return config.refreshInterval
}

func (config *Config) GetNoticeTTL() time.Duration {
	return config.noticeTTL
}

func (config *Config) GetTelegramBotAPIToken() string {
	return config.telegramBotAPIToken
}

func (config *Config) GetTelegramChatID() int64 {
	return config.telegramChatID
}

// TelegramConfigured reports whether the optional notifier has everything
// it needs.
func (config *Config) TelegramConfigured() bool {
	return config.telegramBotAPIToken != "" && config.telegramChatID != 0
}

func (config *Config) getKeyOrDefault(keyName string, defaultValue string) string {
	key := os.Getenv(keyName)
	if key == "" {
		return defaultValue
	}
	return key
}

func (config *Config) getDurationOrDefault(keyName string, defaultValue time.Duration) time.Duration {
	key := os.Getenv(keyName)
	if key == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(key)
	if err != nil {
		config.logger.Panicf("invalid %s %q", keyName, key)
	}
	return duration
}
