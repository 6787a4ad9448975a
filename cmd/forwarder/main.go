package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"signal-desk/internal/bot"
	"signal-desk/internal/config"
	"signal-desk/internal/forwarder"
	"signal-desk/internal/logger"
	"signal-desk/internal/metrics"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	tele "gopkg.in/telebot.v3"
)

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	setupLoggerFunc   = logger.Setup
	newBotFunc        = bot.NewBot
	startBotFunc      = func(b *tele.Bot) { go b.Start() }
	stopBotFunc       = func(b *tele.Bot) { b.Stop() }
	runForwarderFunc  = func(f *forwarder.Forwarder, ctx context.Context) { f.Start(ctx) }
	setupSignalNotify = ossignal.Notify
	waitForSignalFunc = func(ctx context.Context, quit <-chan os.Signal) {
		select {
		case <-quit:
		case <-ctx.Done():
		}
	}
	startMetricsServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownMetricsServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("forwarder exited with error")
	}
}

func run() error {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	if _, err := setupLoggerFunc(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	client := forwarder.NewAPIClient(cfg.SignalAPIBase, cfg.BotEmail, cfg.BotPassword, cfg.RequestTimeout)

	b, notifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}

	fwd := forwarder.New(client, notifier, forwarder.NewCoarseDedup(forwarder.DefaultDedupLimit), forwarder.Config{
		PollInterval:   cfg.SignalPollInterval,
		RequestTimeout: cfg.RequestTimeout,
	}, m)

	if b != nil {
		bot.NewCommands(fwd, client.BaseURL(), nil).Register(b)
		startBotFunc(b)
		log.Info().Str("username", b.Me.Username).Msg("telegram bot polling")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              cfg.ForwarderMetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		runForwarderFunc(fwd, gctx)
		return nil
	})
	g.Go(func() error {
		if err := startMetricsServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
		waitForSignalFunc(gctx, quit)
		log.Info().Msg("shutting down forwarder")

		cancel()
		if b != nil {
			stopBotFunc(b)
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdownMetricsServerFunc(srv, shutdownCtx); err != nil {
			return fmt.Errorf("metrics server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("forwarder exiting")
	return nil
}

// newNotifier returns the telegram bot when a token is configured, and the notifier
// forwarded signals go to. Without a chat id, signals are only logged.
func newNotifier(cfg *config.Config) (*tele.Bot, forwarder.Notifier, error) {
	if cfg.TelegramBotToken == "" {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set, forwarded signals will only be logged")
		return nil, bot.LogNotifier{}, nil
	}

	b, err := newBotFunc(cfg.TelegramBotToken)
	if err != nil {
		return nil, nil, err
	}
	if cfg.TelegramChatID == 0 {
		log.Warn().Msg("TELEGRAM_CHAT_ID not set, forwarded signals will only be logged")
		return b, bot.LogNotifier{}, nil
	}
	return b, bot.NewChatNotifier(b, cfg.TelegramChatID, nil), nil
}
