package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	LogLevel     string
	DatabasePath string

	// Upstream NAV data sources
	HistoryBaseURL  string
	EstimateBaseURL string
	MirrorBaseURL   string
	FlowBaseURL     string
	FundPageBaseURL string
	ClientTimeout   time.Duration
	RateLimit       int // requests per second toward upstream sources

	// Batch analysis
	LookbackDays    int
	PredictHorizon  int
	PacingDelay     time.Duration
	ReportDir       string
	ReportSchedule  string // cron expression for the daily report job

	// Notification channels (unconfigured channels are skipped)
	PushBaseURL     string
	PushKey         string
	CorpChatWebhook string
	DingTalkWebhook string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8010),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/funds.db"),

		HistoryBaseURL:  getEnv("HISTORY_BASE_URL", "https://api.fund.eastmoney.com"),
		EstimateBaseURL: getEnv("ESTIMATE_BASE_URL", "https://fundgz.1234567.com.cn"),
		MirrorBaseURL:   getEnv("MIRROR_BASE_URL", "http://api.fund.eastmoney.com"),
		FlowBaseURL:     getEnv("FLOW_BASE_URL", "https://push2.eastmoney.com"),
		FundPageBaseURL: getEnv("FUND_PAGE_BASE_URL", "https://fund.eastmoney.com"),
		ClientTimeout:   getEnvAsDuration("CLIENT_TIMEOUT", 15*time.Second),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 2),

		LookbackDays:   getEnvAsInt("LOOKBACK_DAYS", 730),
		PredictHorizon: getEnvAsInt("PREDICT_HORIZON", 5),
		PacingDelay:    getEnvAsDuration("PACING_DELAY", 2*time.Second),
		ReportDir:      getEnv("REPORT_DIR", "./reports"),
		ReportSchedule: getEnv("REPORT_SCHEDULE", "0 0 9 * * *"), // 09:00 daily

		PushBaseURL:     getEnv("PUSH_BASE_URL", "https://sctapi.ftqq.com"),
		PushKey:         getEnv("PUSH_KEY", ""),
		CorpChatWebhook: getEnv("CORP_CHAT_WEBHOOK", ""),
		DingTalkWebhook: getEnv("DINGTALK_WEBHOOK", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("LOOKBACK_DAYS must be positive")
	}
	if c.PredictHorizon <= 0 {
		return fmt.Errorf("PREDICT_HORIZON must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
