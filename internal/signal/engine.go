package signal

import (
	"math"

	"signal-desk/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	rsiPeriod        = 14
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	zoneWindow       = 20

	// MinWindow is the shortest price history the engine will score.
	MinWindow = macdSlowPeriod + macdSignalPeriod

	rsiWeight  = 40.0
	macdWeight = 30.0
	zoneWeight = 30.0

	// distance from 50 at which the RSI component saturates (30/70)
	rsiExtremitySpan = 20.0
)

// Reading is the indicator state at the last bar of a price window.
type Reading struct {
	Price         float64
	RSI           float64
	MACDHistogram float64
	PrevHistogram float64
	MeanAbsChange float64
	Zone          domain.Zone
	ZoneProximity float64
}

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate scores the most recent bar of window. It abstains (returns false) when the
// window is too short, flat, or the indicators cancel out.
func (e *Engine) Evaluate(window []float64, sensitivity float64) (domain.Candidate, bool) {
	reading, ok := Read(window)
	if !ok {
		return domain.Candidate{}, false
	}
	return Classify(reading, sensitivity)
}

// Read computes RSI-14, the MACD 12/26/9 histogram and the support/resistance zone.
func Read(window []float64) (Reading, bool) {
	if len(window) < MinWindow {
		return Reading{}, false
	}
	for _, v := range window {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return Reading{}, false
		}
	}

	rsi := rsiSeries(window, rsiPeriod)
	if len(rsi) == 0 || math.IsNaN(rsi[len(rsi)-1]) {
		return Reading{}, false
	}

	macdLine, signalLine := macdSeries(window, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	last := len(window) - 1

	zone, proximity, ok := classifyZone(window[len(window)-zoneWindow:])
	if !ok {
		return Reading{}, false
	}

	return Reading{
		Price:         window[last],
		RSI:           rsi[last],
		MACDHistogram: macdLine[last] - signalLine[last],
		PrevHistogram: macdLine[last-1] - signalLine[last-1],
		MeanAbsChange: meanAbsChange(window[len(window)-rsiPeriod-1:]),
		Zone:          zone,
		ZoneProximity: proximity,
	}, true
}

// Classify turns a reading into a directional candidate and its quality score:
//
//	raw   = 40*rsi + 30*macd + 30*zone   (each component in [0,1])
//	score = clamp(0, 100, round(raw * sensitivity))
//
// A component only contributes when it votes with the chosen direction. The MACD and
// zone components each give half for agreeing and half for strength (histogram size or
// crossover, proximity to the zone extreme).
func Classify(r Reading, sensitivity float64) (domain.Candidate, bool) {
	if !(sensitivity > 0) {
		sensitivity = 1
	}

	rsiVote := sign(50 - r.RSI)
	macdVote := sign(r.MACDHistogram)
	zoneVote := 1
	if r.Zone == domain.ZoneResistance {
		zoneVote = -1
	}

	dir := sign(float64(rsiVote + macdVote + zoneVote))
	if dir == 0 {
		return domain.Candidate{}, false
	}

	var rsiC, macdC, zoneC float64
	if rsiVote == dir {
		rsiC = math.Min(math.Abs(r.RSI-50)/rsiExtremitySpan, 1)
	}
	if macdVote == dir {
		var magnitude float64
		if r.MeanAbsChange > 0 {
			magnitude = math.Min(math.Abs(r.MACDHistogram)/r.MeanAbsChange, 1)
		}
		var crossover float64
		if sign(r.PrevHistogram) != dir {
			crossover = 1
		}
		macdC = 0.5*magnitude + 0.5*crossover
	}
	if zoneVote == dir {
		// half for sitting in the agreeing zone, half for how close price is to its extreme
		zoneC = 0.5 + 0.5*clampFloat(r.ZoneProximity, 0, 1)
	}

	raw := rsiWeight*rsiC + macdWeight*macdC + zoneWeight*zoneC
	score := int(math.Round(raw * sensitivity))

	direction := domain.DirectionCall
	if dir < 0 {
		direction = domain.DirectionPut
	}

	return domain.Candidate{
		Direction:     direction,
		Price:         decimal.NewFromFloat(r.Price).Round(5),
		RSI:           r.RSI,
		MACDHistogram: r.MACDHistogram,
		Zone:          r.Zone,
		QualityScore:  clampInt(score, 0, 100),
	}, true
}

func classifyZone(prices []float64) (domain.Zone, float64, bool) {
	low, high := prices[0], prices[0]
	for _, p := range prices[1:] {
		low = math.Min(low, p)
		high = math.Max(high, p)
	}
	span := high - low
	if span <= 0 {
		return "", 0, false
	}

	current := prices[len(prices)-1]
	half := span / 2
	distLow := current - low
	distHigh := high - current
	if distLow <= distHigh {
		return domain.ZoneSupport, clampFloat(1-distLow/half, 0, 1), true
	}
	return domain.ZoneResistance, clampFloat(1-distHigh/half, 0, 1), true
}

func rsiSeries(closes []float64, period int) []float64 {
	if len(closes) <= period {
		return nil
	}
	series := make([]float64, len(closes))
	for i := range series {
		series[i] = math.NaN()
	}

	var gainSum float64
	var lossSum float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	series[period] = rsiFromAvg(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain := math.Max(delta, 0)
		loss := math.Max(-delta, 0)
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		series[i] = rsiFromAvg(avgGain, avgLoss)
	}

	return series
}

func rsiFromAvg(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

func macdSeries(values []float64, fast, slow, signal int) ([]float64, []float64) {
	fastEMA := emaSeries(values, fast)
	slowEMA := emaSeries(values, slow)
	macdLine := make([]float64, len(values))
	for i := range values {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}
	signalLine := emaSeries(macdLine, signal)
	return macdLine, signalLine
}

func emaSeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

func meanAbsChange(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(values); i++ {
		sum += math.Abs(values[i] - values[i-1])
	}
	return sum / float64(len(values)-1)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
