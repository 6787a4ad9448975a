package trend

import (
	"sync"
	"time"

	"signal-desk/internal/domain"
)

const (
	DefaultWindow = 10
	DefaultMaxAge = time.Hour

	bullishThreshold = 0.2
	bearishThreshold = -0.2
)

// HistorySource returns the most recent signals for a pair, newest first, unfiltered by quality.
type HistorySource interface {
	History(pair string, k int) []domain.Signal
}

// Aggregator derives one directional trend per pair from recent signal history.
type Aggregator struct {
	source HistorySource
	pairs  []string
	window int
	maxAge time.Duration
	now    func() time.Time

	mu     sync.RWMutex
	states map[string]domain.TrendState
}

func NewAggregator(source HistorySource, pairs []string, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		source: source,
		pairs:  append([]string(nil), pairs...),
		window: DefaultWindow,
		maxAge: DefaultMaxAge,
		now:    now,
		states: make(map[string]domain.TrendState, len(pairs)),
	}
}

// Recompute refreshes and caches the trend for pair.
func (a *Aggregator) Recompute(pair string) domain.TrendState {
	now := a.now().UTC()
	var history []domain.Signal
	if a.source != nil {
		history = a.source.History(pair, a.window)
	}

	state := domain.TrendState{
		Pair:        pair,
		Trend:       Classify(recent(history, now, a.maxAge)),
		LastUpdated: now,
	}

	a.mu.Lock()
	a.states[pair] = state
	a.mu.Unlock()
	return state
}

// Get returns the cached trend for pair; a pair that has never been computed is neutral.
func (a *Aggregator) Get(pair string) domain.TrendState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if state, ok := a.states[pair]; ok {
		return state
	}
	return domain.TrendState{Pair: pair, Trend: domain.TrendNeutral}
}

// Trends returns one state per configured pair in configuration order.
func (a *Aggregator) Trends() []domain.TrendState {
	out := make([]domain.TrendState, 0, len(a.pairs))
	for _, pair := range a.pairs {
		out = append(out, a.Get(pair))
	}
	return out
}

// Classify computes the quality-weighted CALL/PUT pressure ratio in [-1, 1] and maps it
// to a trend.
func Classify(signals []domain.Signal) domain.Trend {
	var call, put float64
	for _, s := range signals {
		w := float64(s.QualityScore)
		switch s.Direction {
		case domain.DirectionCall:
			call += w
		case domain.DirectionPut:
			put += w
		}
	}
	total := call + put
	if total == 0 {
		return domain.TrendNeutral
	}

	ratio := (call - put) / total
	switch {
	case ratio > bullishThreshold:
		return domain.TrendBullish
	case ratio < bearishThreshold:
		return domain.TrendBearish
	}
	return domain.TrendNeutral
}

func recent(signals []domain.Signal, now time.Time, maxAge time.Duration) []domain.Signal {
	if maxAge <= 0 {
		return signals
	}
	cutoff := now.Add(-maxAge)
	out := signals[:0:0]
	for _, s := range signals {
		if s.GeneratedAt.Before(cutoff) {
			continue
		}
		out = append(out, s)
	}
	return out
}
