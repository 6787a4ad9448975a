package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"signal-desk/internal/domain"

	"github.com/creasty/defaults"
	"github.com/rs/zerolog/log"
)

// Config is shared by the server and forwarder binaries; each reads the keys it needs.
type Config struct {
	Port       int           `default:"8080"`
	RedisURL   string        `default:""`
	SessionTTL time.Duration `default:"24h"`

	AdminEmail    string `default:"admin@example.com"`
	AdminPassword string `default:"admin123"`
	BotEmail      string `default:"bot@example.com"`
	BotPassword   string `default:"bot12345"`

	EvaluationInterval time.Duration `default:"15s"`
	SignalTimeframe    string        `default:"5m"`
	SignalRetention    int           `default:"50"`
	PriceWindow        int           `default:"120"`
	FeedSeed           int64         `default:"0"`

	LogLevel    string   `default:"info"`
	LogFormat   string   `default:"json"`
	OTELEnabled bool     `default:"false"`
	CORSOrigins []string `default:"[\"*\"]"`

	SSHAddr        string `default:""`
	SSHHostKeyPath string `default:".ssh/signal_desk_ed25519"`

	SignalAPIBase        string        `default:"http://localhost:8080"`
	SignalPollInterval   time.Duration `default:"60s"`
	RequestTimeout       time.Duration `default:"10s"`
	TelegramBotToken     string        `default:""`
	TelegramChatID       int64         `default:"0"`
	ForwarderMetricsAddr string        `default:":9091"`
}

func Load() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		log.Error().Err(err).Msg("config defaults could not be applied")
	}

	cfg.Port = envInt("PORT", cfg.Port)
	cfg.RedisURL = envString("REDIS_URL", cfg.RedisURL)
	if cfg.RedisURL == "" {
		log.Warn().Msg("REDIS_URL not set, sessions will be kept in memory")
	}
	cfg.SessionTTL = envDuration("SESSION_TTL", cfg.SessionTTL)

	cfg.AdminEmail = envString("ADMIN_EMAIL", cfg.AdminEmail)
	cfg.AdminPassword = envString("ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.BotEmail = envString("BOT_EMAIL", cfg.BotEmail)
	cfg.BotPassword = envString("BOT_PASSWORD", cfg.BotPassword)

	cfg.EvaluationInterval = envDuration("EVALUATION_INTERVAL", cfg.EvaluationInterval)
	if tf := envString("SIGNAL_TIMEFRAME", cfg.SignalTimeframe); tf != cfg.SignalTimeframe {
		if _, ok := domain.TimeframeTTL[tf]; ok {
			cfg.SignalTimeframe = tf
		} else {
			log.Warn().Str("value", tf).Msg("unsupported SIGNAL_TIMEFRAME, keeping default")
		}
	}
	cfg.SignalRetention = envInt("SIGNAL_RETENTION", cfg.SignalRetention)
	cfg.PriceWindow = envInt("PRICE_WINDOW", cfg.PriceWindow)
	if v := strings.TrimSpace(os.Getenv("FEED_SEED")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.FeedSeed = n
		} else {
			log.Warn().Str("key", "FEED_SEED").Str("value", v).Msg("invalid integer, keeping default")
		}
	}

	cfg.LogLevel = strings.ToLower(envString("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(envString("LOG_FORMAT", cfg.LogFormat))
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		log.Warn().Str("value", cfg.LogFormat).Msg("unsupported LOG_FORMAT, defaulting to json")
		cfg.LogFormat = "json"
	}
	cfg.OTELEnabled = envBool("OTEL_ENABLED", cfg.OTELEnabled)
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	cfg.SSHAddr = envString("SSH_ADDR", cfg.SSHAddr)
	cfg.SSHHostKeyPath = envString("SSH_HOST_KEY_PATH", cfg.SSHHostKeyPath)

	cfg.SignalAPIBase = strings.TrimRight(envString("SIGNAL_API_BASE", cfg.SignalAPIBase), "/")
	cfg.SignalPollInterval = envDuration("SIGNAL_POLL_INTERVAL", cfg.SignalPollInterval)
	cfg.RequestTimeout = envDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.TelegramBotToken = envString("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = n
		} else {
			log.Warn().Str("key", "TELEGRAM_CHAT_ID").Str("value", v).Msg("invalid chat id, ignoring")
		}
	}
	cfg.ForwarderMetricsAddr = envString("FORWARDER_METRICS_ADDR", cfg.ForwarderMetricsAddr)

	return cfg
}

// HTTPAddr returns the listen address for the server.
func (c *Config) HTTPAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid positive integer, keeping default")
		return fallback
	}
	return n
}

// envDuration accepts Go durations ("90s") or a bare number of seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration, keeping default")
		return fallback
	}
	return d
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid boolean, keeping default")
		return fallback
	}
	return b
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
