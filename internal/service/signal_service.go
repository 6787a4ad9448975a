package service

import (
	"context"
	"fmt"
	"strings"

	"signal-desk/internal/domain"
	"signal-desk/internal/metrics"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxQueryLimit = 200

type PriceFeed interface {
	Window(pair string) []float64
}

type SignalEngine interface {
	Evaluate(window []float64, sensitivity float64) (domain.Candidate, bool)
}

type SignalStore interface {
	Record(c domain.Candidate) domain.Signal
	Query(filter domain.SignalFilter) []domain.Signal
}

type TrendAggregator interface {
	Recompute(pair string) domain.TrendState
	Trends() []domain.TrendState
}

type SettingsGate interface {
	Read() domain.Settings
	Write(role domain.Role, candidate domain.Settings) (domain.Settings, error)
}

type SignalService struct {
	tracer    trace.Tracer
	feed      PriceFeed
	engine    SignalEngine
	store     SignalStore
	trends    TrendAggregator
	settings  SettingsGate
	pairs     []string
	timeframe string
	metrics   *metrics.Metrics
}

func NewSignalService(
	tracer trace.Tracer,
	feed PriceFeed,
	engine SignalEngine,
	store SignalStore,
	trends TrendAggregator,
	settings SettingsGate,
	pairs []string,
	timeframe string,
	m *metrics.Metrics,
) *SignalService {
	if timeframe == "" {
		timeframe = domain.DefaultTimeframe
	}
	return &SignalService{
		tracer:    tracer,
		feed:      feed,
		engine:    engine,
		store:     store,
		trends:    trends,
		settings:  settings,
		pairs:     append([]string(nil), pairs...),
		timeframe: timeframe,
		metrics:   m,
	}
}

// EvaluatePair scores the current price window of pair under the active sensitivity,
// records a signal when the engine produces one and refreshes the pair's trend.
func (s *SignalService) EvaluatePair(ctx context.Context, pair string) (*domain.Signal, error) {
	_, span := s.tracer.Start(ctx, "signal-service.evaluate-pair")
	defer span.End()
	span.SetAttributes(attribute.String("pair", pair))

	if s.feed == nil || s.engine == nil || s.store == nil || s.settings == nil {
		return nil, fmt.Errorf("signal service is not fully initialized")
	}
	if !domain.IsSupportedPair(pair) {
		return nil, fmt.Errorf("unsupported pair: %s", pair)
	}

	cand, ok := s.engine.Evaluate(s.feed.Window(pair), s.settings.Read().IndicatorSensitivity)
	if !ok {
		if s.metrics != nil {
			s.metrics.Abstentions.WithLabelValues(pair).Inc()
		}
		s.recomputeTrend(pair)
		return nil, nil
	}
	cand.Pair = pair
	cand.Timeframe = s.timeframe

	sig := s.store.Record(cand)
	s.recomputeTrend(pair)
	if s.metrics != nil {
		s.metrics.SignalsGenerated.WithLabelValues(pair, string(sig.Direction)).Inc()
	}
	log.Debug().
		Str("pair", pair).
		Str("signal_id", sig.ID).
		Str("direction", string(sig.Direction)).
		Int("quality", sig.QualityScore).
		Msg("signal recorded")
	return &sig, nil
}

// EvaluateAll runs EvaluatePair for every configured pair and returns the signals recorded.
func (s *SignalService) EvaluateAll(ctx context.Context) ([]domain.Signal, error) {
	recorded := make([]domain.Signal, 0, len(s.pairs))
	for _, pair := range s.pairs {
		sig, err := s.EvaluatePair(ctx, pair)
		if err != nil {
			return recorded, fmt.Errorf("evaluate %s: %w", pair, err)
		}
		if sig != nil {
			recorded = append(recorded, *sig)
		}
	}
	return recorded, nil
}

func (s *SignalService) ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error) {
	_, span := s.tracer.Start(ctx, "signal-service.list-signals")
	defer span.End()

	if s.store == nil {
		return nil, fmt.Errorf("signal service is not fully initialized")
	}

	filter.Pair = strings.ToUpper(strings.TrimSpace(filter.Pair))
	if filter.Pair != "" && !domain.IsSupportedPair(filter.Pair) {
		return nil, fmt.Errorf("unsupported pair: %s", filter.Pair)
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > maxQueryLimit {
		filter.Limit = maxQueryLimit
	}

	return s.store.Query(filter), nil
}

func (s *SignalService) Trends(ctx context.Context) []domain.TrendState {
	_, span := s.tracer.Start(ctx, "signal-service.trends")
	defer span.End()

	if s.trends == nil {
		return nil
	}
	return s.trends.Trends()
}

func (s *SignalService) Pairs() []string {
	return append([]string(nil), s.pairs...)
}

func (s *SignalService) Settings() domain.Settings {
	return s.settings.Read()
}

func (s *SignalService) UpdateSettings(ctx context.Context, role domain.Role, candidate domain.Settings) (domain.Settings, error) {
	_, span := s.tracer.Start(ctx, "signal-service.update-settings")
	defer span.End()

	updated, err := s.settings.Write(role, candidate)
	if err != nil {
		return domain.Settings{}, err
	}
	if s.metrics != nil {
		s.metrics.SettingsUpdates.Inc()
	}
	log.Info().
		Int("minimum_signal_quality", updated.MinimumSignalQuality).
		Float64("indicator_sensitivity", updated.IndicatorSensitivity).
		Msg("settings updated")
	return updated, nil
}

func (s *SignalService) recomputeTrend(pair string) {
	if s.trends != nil {
		s.trends.Recompute(pair)
	}
}
