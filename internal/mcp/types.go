package mcp

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"signal-desk/internal/domain"
)

const (
	defaultSignalLimit = 50
	maxSignalLimit     = 200
)

// signalView flattens domain.Signal into schema-friendly scalars.
type signalView struct {
	ID                string  `json:"id"`
	Pair              string  `json:"pair"`
	Direction         string  `json:"direction"`
	Timeframe         string  `json:"timeframe"`
	GeneratedAt       string  `json:"generatedAt"`
	ExpiresAt         string  `json:"expiresAt"`
	Price             string  `json:"price"`
	RSI               float64 `json:"rsi"`
	MACDHistogram     float64 `json:"macdHistogram"`
	SupportResistance string  `json:"supportResistance"`
	QualityScore      int     `json:"qualityScore"`
}

type trendView struct {
	Pair        string `json:"pair"`
	Trend       string `json:"trend"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}

type emptyInput struct{}

type signalsListInput struct {
	Pair  string `json:"pair,omitempty" jsonschema:"optional currency pair (e.g. EUR/USD or EURUSD)"`
	Limit int    `json:"limit,omitempty" jsonschema:"number of signals to return, max 200"`
}

type signalsListOutput struct {
	Signals []signalView `json:"signals"`
}

type trendsListOutput struct {
	Trends []trendView `json:"trends"`
}

type pairsListOutput struct {
	Pairs []string `json:"pairs"`
}

type settingsOutput struct {
	MinimumSignalQuality int     `json:"minimumSignalQuality"`
	IndicatorSensitivity float64 `json:"indicatorSensitivity"`
}

func toSignalViews(signals []domain.Signal) []signalView {
	out := make([]signalView, 0, len(signals))
	for _, s := range signals {
		out = append(out, signalView{
			ID:                s.ID,
			Pair:              s.Pair,
			Direction:         string(s.Direction),
			Timeframe:         s.Timeframe,
			GeneratedAt:       s.GeneratedAt.UTC().Format(time.RFC3339),
			ExpiresAt:         s.ExpiresAt.UTC().Format(time.RFC3339),
			Price:             s.Price.StringFixed(5),
			RSI:               s.RSI,
			MACDHistogram:     s.MACDHistogram,
			SupportResistance: string(s.Zone),
			QualityScore:      s.QualityScore,
		})
	}
	return out
}

func toTrendViews(trends []domain.TrendState) []trendView {
	out := make([]trendView, 0, len(trends))
	for _, t := range trends {
		v := trendView{Pair: t.Pair, Trend: string(t.Trend)}
		if !t.LastUpdated.IsZero() {
			v.LastUpdated = t.LastUpdated.UTC().Format(time.RFC3339)
		}
		out = append(out, v)
	}
	return out
}

// normalizePair accepts "eur/usd" and "EURUSD" forms.
func normalizePair(pair string) (string, error) {
	pair = strings.ToUpper(strings.TrimSpace(pair))
	if pair == "" {
		return "", fmt.Errorf("pair is required")
	}
	if len(pair) == 6 && !strings.Contains(pair, "/") {
		pair = pair[:3] + "/" + pair[3:]
	}
	if !domain.IsSupportedPair(pair) {
		return "", fmt.Errorf("unsupported pair: %s", pair)
	}
	return pair, nil
}

func normalizeSignalLimit(limit int) int {
	if limit <= 0 {
		return defaultSignalLimit
	}
	if limit > maxSignalLimit {
		return maxSignalLimit
	}
	return limit
}

func normalizeSignalFilter(in signalsListInput) (domain.SignalFilter, error) {
	filter := domain.SignalFilter{Limit: normalizeSignalLimit(in.Limit)}
	if strings.TrimSpace(in.Pair) != "" {
		pair, err := normalizePair(in.Pair)
		if err != nil {
			return domain.SignalFilter{}, err
		}
		filter.Pair = pair
	}
	return filter, nil
}

func supportedTimeframes() []string {
	out := make([]string, 0, len(domain.TimeframeTTL))
	for tf := range domain.TimeframeTTL {
		out = append(out, tf)
	}
	sort.Slice(out, func(i, j int) bool {
		return domain.TimeframeTTL[out[i]] < domain.TimeframeTTL[out[j]]
	})
	return out
}
