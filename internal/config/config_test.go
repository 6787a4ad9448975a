package config

import (
	"reflect"
	"testing"
	"time"
)

var allKeys = []string{
	"PORT", "REDIS_URL", "SESSION_TTL", "ADMIN_EMAIL", "ADMIN_PASSWORD", "BOT_EMAIL", "BOT_PASSWORD",
	"EVALUATION_INTERVAL", "SIGNAL_TIMEFRAME", "SIGNAL_RETENTION", "PRICE_WINDOW", "FEED_SEED",
	"LOG_LEVEL", "LOG_FORMAT", "OTEL_ENABLED", "CORS_ORIGINS",
	"SSH_ADDR", "SSH_HOST_KEY_PATH",
	"SIGNAL_API_BASE", "SIGNAL_POLL_INTERVAL", "REQUEST_TIMEOUT", "TELEGRAM_BOT_TOKEN",
	"TELEGRAM_CHAT_ID", "FORWARDER_METRICS_ADDR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.Port != 8080 || cfg.HTTPAddr() != ":8080" {
		t.Fatalf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.RedisURL != "" || cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("unexpected session defaults: %+v", cfg)
	}
	if cfg.AdminEmail != "admin@example.com" || cfg.BotEmail != "bot@example.com" {
		t.Fatalf("unexpected account defaults: %+v", cfg)
	}
	if cfg.EvaluationInterval != 15*time.Second || cfg.SignalTimeframe != "5m" || cfg.SignalRetention != 50 || cfg.PriceWindow != 120 {
		t.Fatalf("unexpected pipeline defaults: %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "json" || cfg.OTELEnabled {
		t.Fatalf("unexpected observability defaults: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"*"}) {
		t.Fatalf("unexpected cors default: %+v", cfg)
	}
	if cfg.SSHAddr != "" || cfg.SSHHostKeyPath != ".ssh/signal_desk_ed25519" {
		t.Fatalf("unexpected ssh defaults: %+v", cfg)
	}
	if cfg.SignalAPIBase != "http://localhost:8080" || cfg.SignalPollInterval != time.Minute || cfg.RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected forwarder defaults: %+v", cfg)
	}
	if cfg.TelegramBotToken != "" || cfg.TelegramChatID != 0 || cfg.ForwarderMetricsAddr != ":9091" {
		t.Fatalf("unexpected telegram defaults: %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("ADMIN_EMAIL", "ops@example.com")
	t.Setenv("EVALUATION_INTERVAL", "30")
	t.Setenv("SIGNAL_TIMEFRAME", "15m")
	t.Setenv("SIGNAL_RETENTION", "80")
	t.Setenv("FEED_SEED", "42")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("SSH_ADDR", ":2222")
	t.Setenv("SIGNAL_API_BASE", "http://api:8080/")
	t.Setenv("SIGNAL_POLL_INTERVAL", "45s")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg := Load()
	if cfg.HTTPAddr() != ":9090" || cfg.RedisURL != "redis:6379" || cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
	if cfg.AdminEmail != "ops@example.com" || cfg.AdminPassword != "admin123" {
		t.Fatalf("unexpected admin config: %+v", cfg)
	}
	if cfg.EvaluationInterval != 30*time.Second || cfg.SignalTimeframe != "15m" || cfg.SignalRetention != 80 || cfg.FeedSeed != 42 {
		t.Fatalf("unexpected pipeline config: %+v", cfg)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "console" || !cfg.OTELEnabled {
		t.Fatalf("unexpected observability config: %+v", cfg)
	}
	if cfg.SSHAddr != ":2222" {
		t.Fatalf("unexpected ssh addr: %q", cfg.SSHAddr)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"http://a.test", "http://b.test"}) {
		t.Fatalf("unexpected cors origins: %+v", cfg.CORSOrigins)
	}
	if cfg.SignalAPIBase != "http://api:8080" || cfg.SignalPollInterval != 45*time.Second {
		t.Fatalf("unexpected forwarder config: %+v", cfg)
	}
	if cfg.TelegramBotToken != "token" || cfg.TelegramChatID != -100123 {
		t.Fatalf("unexpected telegram config: %+v", cfg)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "bad")
	t.Setenv("SESSION_TTL", "-5m")
	t.Setenv("EVALUATION_INTERVAL", "soon")
	t.Setenv("SIGNAL_TIMEFRAME", "2d")
	t.Setenv("SIGNAL_RETENTION", "0")
	t.Setenv("FEED_SEED", "x")
	t.Setenv("LOG_FORMAT", "xml")
	t.Setenv("OTEL_ENABLED", "maybe")
	t.Setenv("TELEGRAM_CHAT_ID", "general")

	cfg := Load()
	if cfg.Port != 8080 || cfg.SessionTTL != 24*time.Hour || cfg.EvaluationInterval != 15*time.Second {
		t.Fatalf("invalid values should fall back to defaults: %+v", cfg)
	}
	if cfg.SignalTimeframe != "5m" || cfg.SignalRetention != 50 || cfg.FeedSeed != 0 {
		t.Fatalf("invalid pipeline values should fall back to defaults: %+v", cfg)
	}
	if cfg.LogFormat != "json" || cfg.OTELEnabled || cfg.TelegramChatID != 0 {
		t.Fatalf("invalid values should fall back to defaults: %+v", cfg)
	}
}
