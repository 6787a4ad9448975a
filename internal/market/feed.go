package market

import (
	"math"
	"math/rand"
	"sync"
)

const (
	DefaultWindowSize = 120

	volatility     = 0.0009
	driftMagnitude = 0.00035
	regimeFlipProb = 0.06
	reversionRate  = 0.02
)

var basePrices = map[string]float64{
	"EUR/USD": 1.0850,
	"GBP/USD": 1.2700,
	"USD/JPY": 149.50,
	"AUD/USD": 0.6550,
	"USD/CAD": 1.3600,
	"EUR/JPY": 162.20,
}

type series struct {
	base   float64
	drift  float64
	prices []float64
}

// Feed produces a synthetic, seeded random walk per pair with trending regimes so the
// indicator engine sees both momentum and reversals.
type Feed struct {
	pairs []string
	size  int

	mu     sync.RWMutex
	rng    *rand.Rand
	series map[string]*series
}

// NewFeed creates a feed and warms every pair up to a full window.
func NewFeed(pairs []string, size int, seed int64) *Feed {
	if size <= 0 {
		size = DefaultWindowSize
	}
	f := &Feed{
		pairs:  append([]string(nil), pairs...),
		size:   size,
		rng:    rand.New(rand.NewSource(seed)),
		series: make(map[string]*series, len(pairs)),
	}
	for _, pair := range f.pairs {
		base, ok := basePrices[pair]
		if !ok {
			base = 1.0
		}
		f.series[pair] = &series{base: base, drift: driftMagnitude, prices: []float64{base}}
	}
	for i := 1; i < size; i++ {
		f.Step()
	}
	return f
}

func (f *Feed) Pairs() []string {
	return append([]string(nil), f.pairs...)
}

// Step appends one bar to every pair, dropping the oldest once the window is full.
func (f *Feed) Step() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, pair := range f.pairs {
		s := f.series[pair]
		if f.rng.Float64() < regimeFlipProb {
			s.drift = -s.drift
		}
		last := s.prices[len(s.prices)-1]
		pull := reversionRate * math.Log(s.base/last)
		next := last * math.Exp(s.drift+pull+volatility*f.rng.NormFloat64())

		s.prices = append(s.prices, next)
		if len(s.prices) > f.size {
			s.prices = append([]float64(nil), s.prices[len(s.prices)-f.size:]...)
		}
	}
}

// Window returns a copy of the price history for pair, oldest first.
func (f *Feed) Window(pair string) []float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	s, ok := f.series[pair]
	if !ok {
		return nil
	}
	return append([]float64(nil), s.prices...)
}
