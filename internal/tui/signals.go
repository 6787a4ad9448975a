package tui

import (
	"context"
	"fmt"
	"strings"

	"signal-desk/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const explorerLimit = 200

type filteredSignalsMsg []domain.Signal
type filteredSignalsErrMsg struct{ err error }

// SignalExplorerModel lists stored signals with a cycling pair filter.
type SignalExplorerModel struct {
	services     Services
	pairOptions  []string
	pairIdx      int
	signals      []domain.Signal
	scrollOffset int
	loading      bool
	err          error
	width        int
	height       int
}

func NewSignalExplorerModel(svc Services) SignalExplorerModel {
	pairs := domain.SupportedPairs
	if svc.Trends != nil {
		pairs = svc.Trends.Pairs()
	}
	return SignalExplorerModel{
		services:    svc,
		pairOptions: append([]string{"ALL"}, pairs...),
		loading:     true,
	}
}

func (m SignalExplorerModel) Init() tea.Cmd {
	return m.fetchSignalsCmd()
}

func (m SignalExplorerModel) Update(msg tea.Msg) (SignalExplorerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case filteredSignalsMsg:
		m.signals = []domain.Signal(msg)
		m.loading = false
		m.scrollOffset = 0
		m.err = nil
		return m, nil

	case filteredSignalsErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.FilterPair):
			m.pairIdx = (m.pairIdx + 1) % len(m.pairOptions)
			m.loading = true
			return m, m.fetchSignalsCmd()

		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.fetchSignalsCmd()

		case key.Matches(msg, DefaultKeyMap.Down):
			if m.scrollOffset < len(m.signals)-m.visibleRows() {
				m.scrollOffset++
			}
			return m, nil

		case key.Matches(msg, DefaultKeyMap.Up):
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}
			return m, nil
		}
	}
	return m, nil
}

func (m SignalExplorerModel) View() string {
	sections := []string{
		HeaderStyle.Render("  Signal Explorer"),
		"",
		"  " + m.renderPairChips(),
		SubtextStyle.Render(strings.Repeat("─", max(m.width-2, 10))),
	}

	switch {
	case m.loading:
		sections = append(sections, SubtextStyle.Render("  Loading..."))
		return strings.Join(sections, "\n")
	case m.err != nil:
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		return strings.Join(sections, "\n")
	case len(m.signals) == 0:
		sections = append(sections, SubtextStyle.Render("  No signals match the current filter"))
		return strings.Join(sections, "\n")
	}

	sections = append(sections, SubtextStyle.Render(
		fmt.Sprintf("  %-8s %-4s %-4s %10s  %-9s %-10s %-14s %s", "Pair", "TF", "Dir", "Price", "RSI", "Zone", "Quality", "Time"),
	))

	visible := m.visibleRows()
	end := min(m.scrollOffset+visible, len(m.signals))
	for i := m.scrollOffset; i < end; i++ {
		sections = append(sections, "  "+FormatSignal(m.signals[i]))
	}
	if len(m.signals) > visible {
		sections = append(sections, SubtextStyle.Render(
			fmt.Sprintf("  Showing %d-%d of %d (j/k to scroll)", m.scrollOffset+1, end, len(m.signals)),
		))
	}

	sections = append(sections, "", SubtextStyle.Render("  [p] pair  [R] refresh  [j/k] scroll"))
	return strings.Join(sections, "\n")
}

func (m *SignalExplorerModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Pair returns the active pair filter, empty for all pairs.
func (m SignalExplorerModel) Pair() string {
	if m.pairIdx == 0 {
		return ""
	}
	return m.pairOptions[m.pairIdx]
}

// SignalCount returns the number of loaded signals (for testing).
func (m SignalExplorerModel) SignalCount() int { return len(m.signals) }

func (m SignalExplorerModel) renderPairChips() string {
	parts := []string{SubtextStyle.Render("Pair: ")}
	for i, opt := range m.pairOptions {
		if i == m.pairIdx {
			parts = append(parts, ActiveTabStyle.Render(opt))
		} else {
			parts = append(parts, SubtextStyle.Render(opt))
		}
		parts = append(parts, " ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m SignalExplorerModel) fetchSignalsCmd() tea.Cmd {
	filter := domain.SignalFilter{Pair: m.Pair(), Limit: explorerLimit}
	return func() tea.Msg {
		if m.services.Signals == nil {
			return filteredSignalsErrMsg{err: fmt.Errorf("signal service not available")}
		}
		signals, err := m.services.Signals.ListSignals(context.Background(), filter)
		if err != nil {
			return filteredSignalsErrMsg{err: err}
		}
		return filteredSignalsMsg(signals)
	}
}

func (m SignalExplorerModel) visibleRows() int {
	// header, chips, table header and help footer
	available := m.height - 10
	if available < 5 {
		return 5
	}
	return available
}
