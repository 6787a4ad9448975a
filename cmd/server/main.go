package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"signal-desk/internal/auth"
	"signal-desk/internal/cache"
	"signal-desk/internal/config"
	"signal-desk/internal/domain"
	"signal-desk/internal/handler"
	"signal-desk/internal/job"
	"signal-desk/internal/logger"
	"signal-desk/internal/market"
	mcpserver "signal-desk/internal/mcp"
	"signal-desk/internal/metrics"
	"signal-desk/internal/service"
	"signal-desk/internal/settings"
	signalengine "signal-desk/internal/signal"
	"signal-desk/internal/store"
	"signal-desk/internal/stream"
	"signal-desk/internal/trend"
	"signal-desk/internal/tui"
	"signal-desk/pkg/tracing"

	"github.com/charmbracelet/ssh"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	_ "signal-desk/docs"
)

const serviceName = "signal-desk"

var (
	loadEnvFunc             = godotenv.Load
	loadConfigFunc          = config.Load
	setupLoggerFunc         = logger.Setup
	initTracerFunc          = tracing.InitTracer
	newRedisClientFunc      = cache.NewClient
	newSignalEngineFunc     = signalengine.NewEngine
	newFeedFunc             = market.NewFeed
	startSignalPollerFunc   = func(p *job.SignalPoller, ctx context.Context) { go p.Start(ctx) }
	startSessionSweeperFunc = func(j *job.SessionSweeper, ctx context.Context) { go j.Start(ctx) }
	newRouterFunc           = gin.Default
	setupSignalNotify       = ossignal.Notify
	waitForSignalFunc       = func(ctx context.Context, quit <-chan os.Signal) {
		select {
		case <-quit:
		case <-ctx.Done():
		}
	}
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	newSSHServerFunc       = tui.NewSSHServer
	startSSHServerFunc     = func(srv *ssh.Server) error { return srv.ListenAndServe() }
	shutdownSSHServerFunc  = func(srv *ssh.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Signal Desk API
// @version         1.0
// @description     Currency pair signal pipeline with session auth and live streaming.

// @host      localhost:8080
// @BasePath  /
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
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

	tp, tracer, err := initTracerFunc(ctx, serviceName, cfg.OTELEnabled)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	m := metrics.New()

	sessions, closeSessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	users, err := seedUsers(cfg)
	if err != nil {
		return err
	}
	authService := auth.NewService(tracer, users, sessions, cfg.SessionTTL)

	gate, err := settings.NewGate(domain.DefaultSettings())
	if err != nil {
		return fmt.Errorf("initialize settings: %w", err)
	}
	signalStore := store.NewSignalStore(gate, cfg.SignalRetention, nil)
	trends := trend.NewAggregator(signalStore, domain.SupportedPairs, nil)
	feed := newFeedFunc(domain.SupportedPairs, cfg.PriceWindow, cfg.FeedSeed)
	signalService := service.NewSignalService(
		tracer, feed, newSignalEngineFunc(), signalStore, trends, gate,
		domain.SupportedPairs, cfg.SignalTimeframe, m,
	)

	hub := stream.NewHub(gate, m)
	signalStore.Subscribe(hub.Publish)
	defer hub.Close()

	// Background jobs stop with ctx.
	startSignalPollerFunc(job.NewSignalPoller(tracer, feed, signalService, cfg.EvaluationInterval), ctx)
	if purger, ok := sessions.(job.ExpiredSessionPurger); ok {
		startSessionSweeperFunc(job.NewSessionSweeper(tracer, purger), ctx)
	}

	h := handler.New(tracer, authService, signalService, hub)
	mcpHandler := mcpserver.NewHTTPTransportHandler(mcpserver.NewServer(tracer, signalService), authService)
	r := newRouter(cfg, m, h, mcpHandler)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var sshSrv *ssh.Server
	if cfg.SSHAddr != "" {
		sshSrv, err = newSSHServerFunc(tui.SSHConfig{Addr: cfg.SSHAddr, HostKeyPath: cfg.SSHHostKeyPath}, signalService, signalService, authService)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if sshSrv != nil {
		g.Go(func() error {
			log.Info().Str("addr", sshSrv.Addr).Msg("ssh dashboard listening")
			if err := startSSHServerFunc(sshSrv); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				return fmt.Errorf("ssh listen: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := startHTTPServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
		waitForSignalFunc(gctx, quit)
		log.Info().Msg("shutting down server")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if sshSrv != nil {
			if err := shutdownSSHServerFunc(sshSrv, shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("ssh server shutdown failed")
			}
		}
		if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server exiting")
	return nil
}

func newRouter(cfg *config.Config, m *metrics.Metrics, h *handler.Handler, mcpHandler http.Handler) *gin.Engine {
	r := newRouterFunc()
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(otelgin.Middleware(serviceName))

	h.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	if mcpHandler != nil {
		r.Any("/mcp", gin.WrapH(mcpHandler))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// newSessionStore prefers redis when REDIS_URL is set and falls back to process memory.
func newSessionStore(ctx context.Context, cfg *config.Config) (auth.SessionStore, func(), error) {
	if cfg.RedisURL == "" {
		return auth.NewMemorySessionStore(nil), func() {}, nil
	}

	client, err := newRedisClientFunc(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info().Msg("sessions stored in redis")
	return auth.NewRedisSessionStore(client), func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}, nil
}

func seedUsers(cfg *config.Config) (*auth.UserStore, error) {
	users := auth.NewUserStore()
	if _, err := users.Add(cfg.AdminEmail, cfg.AdminPassword, domain.RoleAdmin); err != nil {
		return nil, fmt.Errorf("seed admin account: %w", err)
	}
	if strings.EqualFold(strings.TrimSpace(cfg.BotEmail), strings.TrimSpace(cfg.AdminEmail)) {
		// The forwarder may log in with the admin account, as long as it uses the admin password.
		if cfg.BotPassword != cfg.AdminPassword {
			return nil, fmt.Errorf("seed bot account: BOT_EMAIL matches ADMIN_EMAIL but BOT_PASSWORD differs")
		}
		log.Info().Msg("forwarder shares the admin account")
		return users, nil
	}
	if _, err := users.Add(cfg.BotEmail, cfg.BotPassword, domain.RoleUser); err != nil {
		return nil, fmt.Errorf("seed bot account: %w", err)
	}
	return users, nil
}
