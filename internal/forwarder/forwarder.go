package forwarder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"signal-desk/internal/domain"
	"signal-desk/internal/metrics"

	"github.com/rs/zerolog/log"
)

const (
	DefaultPollInterval   = 60 * time.Second
	DefaultRequestTimeout = 10 * time.Second

	// one request plus one retry after re-authenticating
	maxFetchAttempts = 2
)

var (
	ErrCycleInProgress = errors.New("poll cycle already in progress")
	errLogin           = errors.New("login")
)

type SignalSource interface {
	Login(ctx context.Context) (string, error)
	FetchSignals(ctx context.Context, token string, limit int) ([]domain.Signal, error)
}

type Notifier interface {
	Notify(ctx context.Context, sig domain.Signal) error
}

type Config struct {
	PollInterval time.Duration
	// RequestTimeout bounds each login, fetch and notify call on its own.
	RequestTimeout time.Duration
}

// CycleReport summarizes one completed poll cycle.
type CycleReport struct {
	Fetched    int
	Unseen     int
	Forwarded  int
	DedupReset bool
}

// Forwarder polls the signal server and pushes every signal it has not forwarded before
// to the notifier. It owns the session credential and the dedup cache.
type Forwarder struct {
	source   SignalSource
	notifier Notifier
	dedup    DedupCache
	cfg      Config
	metrics  *metrics.Metrics

	cycleMu sync.Mutex

	credMu sync.Mutex
	token  string
}

func New(source SignalSource, notifier Notifier, dedup DedupCache, cfg Config, m *metrics.Metrics) *Forwarder {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if dedup == nil {
		dedup = NewCoarseDedup(DefaultDedupLimit)
	}
	return &Forwarder{
		source:   source,
		notifier: notifier,
		dedup:    dedup,
		cfg:      cfg,
		metrics:  m,
	}
}

func (f *Forwarder) PollInterval() time.Duration {
	return f.cfg.PollInterval
}

// Start runs a cycle immediately and then on every tick until ctx is cancelled. Each
// tick runs in its own goroutine; a tick that fires while a cycle is still running is
// skipped.
func (f *Forwarder) Start(ctx context.Context) {
	log.Info().Dur("interval", f.cfg.PollInterval).Msg("forwarder starting")

	var wg sync.WaitGroup
	trigger := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.runLogged(ctx)
		}()
	}

	trigger()
	ticker := time.NewTicker(f.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			log.Info().Msg("forwarder stopped")
			return
		case <-ticker.C:
			trigger()
		}
	}
}

func (f *Forwarder) runLogged(ctx context.Context) {
	report, err := f.RunCycle(ctx)
	switch {
	case errors.Is(err, ErrCycleInProgress):
		log.Debug().Msg("poll skipped, previous cycle still running")
	case err != nil:
		log.Error().Err(err).Msg("poll cycle aborted")
	case report.Unseen > 0:
		log.Info().
			Int("fetched", report.Fetched).
			Int("forwarded", report.Forwarded).
			Bool("dedup_reset", report.DedupReset).
			Msg("poll cycle forwarded signals")
	}
}

// RunCycle performs one poll: authenticate if needed, fetch, dedup and forward. It never
// runs concurrently with itself; an overlapping call returns ErrCycleInProgress.
func (f *Forwarder) RunCycle(ctx context.Context) (CycleReport, error) {
	if !f.cycleMu.TryLock() {
		if f.metrics != nil {
			f.metrics.OverlappingSkipped.Inc()
		}
		return CycleReport{}, ErrCycleInProgress
	}
	defer f.cycleMu.Unlock()

	report, outcome, err := f.cycle(ctx)
	if f.metrics != nil {
		f.metrics.ForwarderCycles.WithLabelValues(outcome).Inc()
	}
	return report, err
}

func (f *Forwarder) cycle(ctx context.Context) (CycleReport, string, error) {
	var report CycleReport

	signals, err := f.fetch(ctx, 0)
	if err != nil {
		return report, fetchOutcome(err), err
	}
	report.Fetched = len(signals)

	ids := make([]string, len(signals))
	for i, s := range signals {
		ids[i] = s.ID
	}
	unseenIDs, reset := f.dedup.Admit(ids)
	report.Unseen = len(unseenIDs)
	report.DedupReset = reset
	if reset && f.metrics != nil {
		f.metrics.DedupResets.Inc()
	}

	unseen := make(map[string]struct{}, len(unseenIDs))
	for _, id := range unseenIDs {
		unseen[id] = struct{}{}
	}
	for _, s := range signals {
		if _, ok := unseen[s.ID]; !ok {
			continue
		}
		if err := f.notify(ctx, s); err != nil {
			return report, "notify_failed", fmt.Errorf("forward signal %s: %w", s.ID, err)
		}
		delete(unseen, s.ID)
		report.Forwarded++
		if f.metrics != nil {
			f.metrics.SignalsForwarded.Inc()
		}
	}
	return report, "ok", nil
}

func (f *Forwarder) notify(ctx context.Context, s domain.Signal) error {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout)
	defer cancel()
	return f.notifier.Notify(ctx, s)
}

// Latest returns up to n of the current signals using the forwarder's credential.
func (f *Forwarder) Latest(ctx context.Context, n int) ([]domain.Signal, error) {
	signals, err := f.fetch(ctx, n)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(signals) > n {
		signals = signals[:n]
	}
	return signals, nil
}

// fetch requests the signal set, re-authenticating and retrying exactly once when the
// credential is rejected.
func (f *Forwarder) fetch(ctx context.Context, limit int) ([]domain.Signal, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		token, err := f.credential(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errLogin, err)
		}

		signals, err := f.fetchOnce(ctx, token, limit)
		if err == nil {
			return signals, nil
		}
		if !errors.Is(err, domain.ErrAuthorization) {
			return nil, err
		}

		f.clearCredential(token)
		lastErr = err
		if attempt < maxFetchAttempts {
			log.Warn().Int("attempt", attempt).Msg("session rejected, re-authenticating")
			if f.metrics != nil {
				f.metrics.ForwarderReauth.Inc()
			}
		}
	}
	return nil, fmt.Errorf("signals still unauthorized after re-login: %w", lastErr)
}

func (f *Forwarder) fetchOnce(ctx context.Context, token string, limit int) ([]domain.Signal, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout)
	defer cancel()
	return f.source.FetchSignals(ctx, token, limit)
}

func (f *Forwarder) credential(ctx context.Context) (string, error) {
	f.credMu.Lock()
	defer f.credMu.Unlock()

	if f.token != "" {
		return f.token, nil
	}
	loginCtx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout)
	defer cancel()
	token, err := f.source.Login(loginCtx)
	if err != nil {
		return "", err
	}
	f.token = token
	return token, nil
}

// clearCredential drops the credential unless another caller already replaced it.
func (f *Forwarder) clearCredential(rejected string) {
	f.credMu.Lock()
	defer f.credMu.Unlock()
	if f.token == rejected {
		f.token = ""
	}
}

// HasCredential reports whether a session token is currently held.
func (f *Forwarder) HasCredential() bool {
	f.credMu.Lock()
	defer f.credMu.Unlock()
	return f.token != ""
}

func fetchOutcome(err error) string {
	switch {
	case errors.Is(err, errLogin):
		return "login_failed"
	case errors.Is(err, domain.ErrAuthorization):
		return "unauthorized"
	default:
		return "fetch_failed"
	}
}
