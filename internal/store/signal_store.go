package store

import (
	"sort"
	"sync"
	"time"

	"signal-desk/internal/domain"

	"github.com/google/uuid"
)

const (
	DefaultRetention  = 50
	defaultQueryLimit = 50
)

// QualityThreshold supplies the minimum quality applied to reads.
type QualityThreshold interface {
	MinimumQuality() int
}

type entry struct {
	signal domain.Signal
	seq    uint64
}

// SignalStore keeps a bounded, per-pair history of generated signals. It has a single
// writer (the evaluation scheduler) and any number of readers; stored signals are never
// mutated and readers always receive copies.
type SignalStore struct {
	now       func() time.Time
	newID     func() string
	retention int
	threshold QualityThreshold

	mu      sync.RWMutex
	history map[string][]entry
	seq     uint64

	subMu       sync.RWMutex
	subscribers []func(domain.Signal)
}

func NewSignalStore(threshold QualityThreshold, retention int, now func() time.Time) *SignalStore {
	if now == nil {
		now = time.Now
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &SignalStore{
		now:       now,
		newID:     func() string { return uuid.NewString() },
		retention: retention,
		threshold: threshold,
		history:   make(map[string][]entry),
	}
}

// Subscribe registers fn to be called with every recorded signal, after the write is visible.
func (s *SignalStore) Subscribe(fn func(domain.Signal)) {
	if fn == nil {
		return
	}
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Record materializes a candidate into a timestamped, expiring signal.
func (s *SignalStore) Record(c domain.Candidate) domain.Signal {
	timeframe := c.Timeframe
	ttl, ok := domain.TimeframeTTL[timeframe]
	if !ok {
		timeframe = domain.DefaultTimeframe
		ttl = domain.TimeframeTTL[timeframe]
	}

	generatedAt := s.now().UTC()
	sig := domain.Signal{
		ID:            s.newID(),
		Pair:          c.Pair,
		Direction:     c.Direction,
		Timeframe:     timeframe,
		GeneratedAt:   generatedAt,
		ExpiresAt:     generatedAt.Add(ttl),
		Price:         c.Price,
		RSI:           c.RSI,
		MACDHistogram: c.MACDHistogram,
		Zone:          c.Zone,
		QualityScore:  c.QualityScore,
	}

	s.mu.Lock()
	s.seq++
	entries := append(s.history[c.Pair], entry{signal: sig, seq: s.seq})
	if overflow := len(entries) - s.retention; overflow > 0 {
		entries = append([]entry(nil), entries[overflow:]...)
	}
	s.history[c.Pair] = entries
	s.mu.Unlock()

	s.subMu.RLock()
	subs := s.subscribers
	s.subMu.RUnlock()
	for _, fn := range subs {
		fn(sig)
	}

	return sig
}

// Query returns signals most-recent-first, keeping only those whose quality meets the
// threshold in effect at the time of the call.
func (s *SignalStore) Query(filter domain.SignalFilter) []domain.Signal {
	minQuality := 0
	if s.threshold != nil {
		minQuality = s.threshold.MinimumQuality()
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	s.mu.RLock()
	matched := make([]entry, 0, limit)
	for pair, entries := range s.history {
		if filter.Pair != "" && pair != filter.Pair {
			continue
		}
		for _, e := range entries {
			if e.signal.QualityScore >= minQuality {
				matched = append(matched, e)
			}
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	out := make([]domain.Signal, len(matched))
	for i, e := range matched {
		out[i] = e.signal
	}
	return out
}

// History returns up to k of the most recent signals for pair, newest first, without
// applying the quality threshold.
func (s *SignalStore) History(pair string, k int) []domain.Signal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history[pair]
	if k <= 0 || k > len(entries) {
		k = len(entries)
	}
	out := make([]domain.Signal, 0, k)
	for i := len(entries) - 1; i >= 0 && len(out) < k; i-- {
		out = append(out, entries[i].signal)
	}
	return out
}

func (s *SignalStore) Len(pair string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history[pair])
}

func sortNewestFirst(entries []entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.signal.GeneratedAt.Equal(b.signal.GeneratedAt) {
			return a.signal.GeneratedAt.After(b.signal.GeneratedAt)
		}
		return a.seq > b.seq
	})
}
