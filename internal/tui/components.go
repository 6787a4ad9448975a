package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"signal-desk/internal/domain"
)

// FormatSignal renders a signal as a single table row.
func FormatSignal(s domain.Signal) string {
	dirStyle := DirectionPutStyle
	if s.Direction == domain.DirectionCall {
		dirStyle = DirectionCallStyle
	}
	return fmt.Sprintf("%-8s %-4s %s %10s  RSI %5.1f  %-10s %s  %s",
		s.Pair,
		s.Timeframe,
		dirStyle.Render(fmt.Sprintf("%-4s", s.Direction)),
		s.Price.StringFixed(5),
		s.RSI,
		s.Zone,
		RenderQualityBar(s.QualityScore, 10),
		s.GeneratedAt.UTC().Format(time.TimeOnly),
	)
}

// FormatTrend renders one pair's trend with its age relative to now.
func FormatTrend(t domain.TrendState, now time.Time) string {
	style := TrendNeutralStyle
	switch t.Trend {
	case domain.TrendBullish:
		style = TrendBullishStyle
	case domain.TrendBearish:
		style = TrendBearishStyle
	}
	updated := "never"
	if !t.LastUpdated.IsZero() {
		updated = now.Sub(t.LastUpdated).Truncate(time.Second).String() + " ago"
	}
	return fmt.Sprintf("%-8s %s  %s", t.Pair, style.Render(fmt.Sprintf("%-8s", strings.ToUpper(string(t.Trend)))), SubtextStyle.Render(updated))
}

// RenderQualityBar renders a 0-100 quality score as a bar of barWidth cells.
func RenderQualityBar(score, barWidth int) string {
	if barWidth <= 0 {
		barWidth = 10
	}
	filled := int(math.Round(float64(score) / 100 * float64(barWidth)))
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	style := QualityGoodStyle
	if score < 60 {
		style = QualityBadStyle
	} else if score < 80 {
		style = QualityOkStyle
	}
	bar := style.Render(strings.Repeat("█", filled)) + SubtextStyle.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("%s %3d", bar, score)
}
