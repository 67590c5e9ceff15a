package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr      string
	Port            string
	DatabasePath    string
	SessionSecret   string
	GinMode         string
	StaticDir       string
	DefaultGoalML   int
	ReminderDelay   time.Duration
	GroqBaseURL     string
	GroqModel       string
	AgentRatePerMin int
	AgentRateBurst  int
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "data/hydration.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "droplog-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	staticDir := strings.TrimSpace(os.Getenv("STATIC_DIR"))
	if staticDir == "" {
		staticDir = "web/static"
	}

	groqBaseURL := strings.TrimSpace(os.Getenv("GROQ_BASE_URL"))
	if groqBaseURL == "" {
		groqBaseURL = "https://api.groq.com/openai/v1"
	}

	groqModel := strings.TrimSpace(os.Getenv("GROQ_MODEL"))
	if groqModel == "" {
		groqModel = "llama3-70b-8192"
	}

	return AppConfig{
		ListenAddr:      listenAddr,
		Port:            port,
		DatabasePath:    databasePath,
		SessionSecret:   sessionSecret,
		GinMode:         ginMode,
		StaticDir:       staticDir,
		DefaultGoalML:   intEnv("DEFAULT_GOAL_ML", 2000),
		ReminderDelay:   time.Duration(intEnv("REMINDER_DELAY_MINUTES", 60)) * time.Minute,
		GroqBaseURL:     groqBaseURL,
		GroqModel:       groqModel,
		AgentRatePerMin: intEnv("AGENT_RATE_PER_MINUTE", 10),
		AgentRateBurst:  intEnv("AGENT_RATE_BURST", 3),
	}
}

func intEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
