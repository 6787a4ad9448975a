package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SignalDirection string

const (
	DirectionCall SignalDirection = "CALL"
	DirectionPut  SignalDirection = "PUT"
)

type Zone string

const (
	ZoneSupport    Zone = "support"
	ZoneResistance Zone = "resistance"
)

type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Pairs evaluated by the synthetic market feed.
var SupportedPairs = []string{"EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD", "USD/CAD", "EUR/JPY"}

// Timeframes a signal may be issued for, mapped to their expiry window.
var TimeframeTTL = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
}

const DefaultTimeframe = "5m"

// Candidate is an engine result that has not yet been materialized by the store.
type Candidate struct {
	Pair          string
	Direction     SignalDirection
	Timeframe     string
	Price         decimal.Decimal
	RSI           float64
	MACDHistogram float64
	Zone          Zone
	QualityScore  int
}

type Signal struct {
	ID            string          `json:"id"`
	Pair          string          `json:"pair"`
	Direction     SignalDirection `json:"direction"`
	Timeframe     string          `json:"timeframe"`
	GeneratedAt   time.Time       `json:"generatedAt"`
	ExpiresAt     time.Time       `json:"expiresAt"`
	Price         decimal.Decimal `json:"price"`
	RSI           float64         `json:"rsi"`
	MACDHistogram float64         `json:"macdHistogram"`
	Zone          Zone            `json:"supportResistance"`
	QualityScore  int             `json:"qualityScore"`
}

type TrendState struct {
	Pair        string    `json:"pair"`
	Trend       Trend     `json:"trend"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type Settings struct {
	MinimumSignalQuality int     `json:"minimumSignalQuality" validate:"gte=0,lte=100"`
	IndicatorSensitivity float64 `json:"indicatorSensitivity" validate:"gte=0.2,lte=2"`
}

func DefaultSettings() Settings {
	return Settings{MinimumSignalQuality: 60, IndicatorSensitivity: 1.0}
}

type SignalFilter struct {
	Pair  string
	Limit int
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

func IsSupportedPair(pair string) bool {
	for _, p := range SupportedPairs {
		if p == pair {
			return true
		}
	}
	return false
}
