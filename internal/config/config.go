package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	ServerPort string
	LogLevel   string
	DBPath     string

	StatsAPIBase      string
	OpenRouterAPIKey  string
	OpenRouterBaseURL string

	ChatPageSize       int
	ChatMaxPages       int
	ConnectionPageSize int
	ConnectionMaxPages int

	ReportChatLimit       int
	ReportConnectionLimit int
	ReportGroupReference  bool
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		DBPath:            getEnv("DB_PATH", "analyses.db"),
		StatsAPIBase:      getEnv("STATS_API_BASE", "https://api.2b2t.vc"),
		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
	}

	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"CHAT_PAGE_SIZE", 100, &cfg.ChatPageSize},
		{"CHAT_MAX_PAGES", 10, &cfg.ChatMaxPages},
		{"CONNECTION_PAGE_SIZE", 100, &cfg.ConnectionPageSize},
		{"CONNECTION_MAX_PAGES", 2, &cfg.ConnectionMaxPages},
		{"REPORT_CHAT_LIMIT", 1000, &cfg.ReportChatLimit},
		{"REPORT_CONNECTION_LIMIT", 10, &cfg.ReportConnectionLimit},
	}
	for _, v := range ints {
		n, err := getEnvInt(v.key, v.fallback)
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %d", v.key, n)
		}
		*v.dst = n
	}

	groupRef, err := getEnvBool("REPORT_GROUP_REFERENCE", true)
	if err != nil {
		return nil, err
	}
	cfg.ReportGroupReference = groupRef

	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("stats_api_base", cfg.StatsAPIBase).
		Int("chat_max_pages", cfg.ChatMaxPages).
		Int("connection_max_pages", cfg.ConnectionMaxPages).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

var Module = fx.Provide(Load)
