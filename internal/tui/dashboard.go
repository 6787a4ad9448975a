package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"signal-desk/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const dashboardRefresh = 5 * time.Second

type trendsMsg struct {
	trends   []domain.TrendState
	settings domain.Settings
}
type latestSignalsMsg []domain.Signal
type latestSignalsErrMsg struct{ err error }
type dashTickMsg time.Time

// DashboardModel shows every pair's trend next to the newest qualifying signals.
type DashboardModel struct {
	services Services
	trends   []domain.TrendState
	settings domain.Settings
	signals  []domain.Signal
	loading  bool
	err      error
	now      func() time.Time
	width    int
	height   int
}

func NewDashboardModel(svc Services) DashboardModel {
	return DashboardModel{services: svc, loading: true, now: time.Now}
}

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchTrendsCmd(), m.fetchSignalsCmd(), m.tickCmd())
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case trendsMsg:
		m.trends = msg.trends
		m.settings = msg.settings
		m.loading = false
		return m, nil

	case latestSignalsMsg:
		m.signals = []domain.Signal(msg)
		m.loading = false
		m.err = nil
		return m, nil

	case latestSignalsErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case dashTickMsg:
		return m, tea.Batch(m.fetchTrendsCmd(), m.fetchSignalsCmd(), m.tickCmd())
	}
	return m, nil
}

func (m DashboardModel) View() string {
	if m.loading && len(m.trends) == 0 {
		return SubtextStyle.Render("Loading market state...")
	}

	trendWidth := m.width/3 - 2
	if trendWidth < 32 {
		trendWidth = 32
	}
	signalWidth := m.width - trendWidth - 6
	if signalWidth < 60 {
		signalWidth = 60
	}

	trendBox := BorderStyle.Width(trendWidth).Render(m.renderTrends())
	signalBox := BorderStyle.Width(signalWidth).Render(m.renderSignals())
	return lipgloss.JoinHorizontal(lipgloss.Top, trendBox, signalBox)
}

func (m *DashboardModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Trends returns the loaded trend rows (for testing).
func (m DashboardModel) Trends() []domain.TrendState { return m.trends }

// Signals returns the loaded signals (for testing).
func (m DashboardModel) Signals() []domain.Signal { return m.signals }

func (m DashboardModel) renderTrends() string {
	lines := []string{HeaderStyle.Render("  Trends")}
	now := m.now()
	for _, t := range m.trends {
		lines = append(lines, "  "+FormatTrend(t, now))
	}
	if len(m.trends) == 0 {
		lines = append(lines, SubtextStyle.Render("  No pairs tracked"))
	}
	lines = append(lines, "", SubtextStyle.Render(fmt.Sprintf("  min quality %d  sensitivity %.1f",
		m.settings.MinimumSignalQuality, m.settings.IndicatorSensitivity)))
	return strings.Join(lines, "\n")
}

func (m DashboardModel) renderSignals() string {
	lines := []string{HeaderStyle.Render("  Latest Signals")}
	if m.err != nil {
		lines = append(lines, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		return strings.Join(lines, "\n")
	}
	for _, s := range m.signals {
		lines = append(lines, "  "+FormatSignal(s))
	}
	if len(m.signals) == 0 {
		lines = append(lines, SubtextStyle.Render("  No qualifying signals yet"))
	}
	return strings.Join(lines, "\n")
}

func (m DashboardModel) fetchTrendsCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Trends == nil {
			return trendsMsg{}
		}
		return trendsMsg{
			trends:   m.services.Trends.Trends(context.Background()),
			settings: m.services.Trends.Settings(),
		}
	}
}

func (m DashboardModel) fetchSignalsCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Signals == nil {
			return latestSignalsErrMsg{err: fmt.Errorf("signal service not available")}
		}
		signals, err := m.services.Signals.ListSignals(context.Background(), domain.SignalFilter{Limit: 10})
		if err != nil {
			return latestSignalsErrMsg{err: err}
		}
		return latestSignalsMsg(signals)
	}
}

func (m DashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(dashboardRefresh, func(t time.Time) tea.Msg {
		return dashTickMsg(t)
	})
}
