package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Tab int

const (
	TabDashboard Tab = iota
	TabSignals
)

var tabNames = []string{"1:Dashboard", "2:Signals"}

// AppModel is the root Bubble Tea model that manages tab navigation and child screens.
type AppModel struct {
	services  Services
	activeTab Tab
	dashboard DashboardModel
	signals   SignalExplorerModel
	width     int
	height    int
	quitting  bool
}

func NewAppModel(svc Services) AppModel {
	return AppModel{
		services:  svc,
		activeTab: TabDashboard,
		dashboard: NewDashboardModel(svc),
		signals:   NewSignalExplorerModel(svc),
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.dashboard.Init(), m.signals.Init())
}

// Update routes data messages to their owning screen and keys to the active tab.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, DefaultKeyMap.Tab):
			m.activeTab = Tab((int(m.activeTab) + 1) % len(tabNames))
			return m, nil
		case key.Matches(msg, DefaultKeyMap.ShiftTab):
			m.activeTab = Tab((int(m.activeTab) + len(tabNames) - 1) % len(tabNames))
			return m, nil
		case msg.String() == "1":
			m.activeTab = TabDashboard
			return m, nil
		case msg.String() == "2":
			m.activeTab = TabSignals
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch msg.(type) {
	case trendsMsg, latestSignalsMsg, latestSignalsErrMsg, dashTickMsg:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case filteredSignalsMsg, filteredSignalsErrMsg:
		m.signals, cmd = m.signals.Update(msg)
	default:
		switch m.activeTab {
		case TabDashboard:
			m.dashboard, cmd = m.dashboard.Update(msg)
		case TabSignals:
			m.signals, cmd = m.signals.Update(msg)
		}
	}
	return m, cmd
}

func (m AppModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var content string
	switch m.activeTab {
	case TabDashboard:
		content = m.dashboard.View()
	case TabSignals:
		content = m.signals.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabBar(), content)
}

func (m *AppModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	contentHeight := h - 2 // tab bar
	m.dashboard.SetSize(w, contentHeight)
	m.signals.SetSize(w, contentHeight)
}

// ActiveTab returns the currently active tab (for testing).
func (m AppModel) ActiveTab() Tab { return m.activeTab }

func (m AppModel) renderTabBar() string {
	tabs := make([]string, 0, len(tabNames)+1)
	for i, name := range tabNames {
		if Tab(i) == m.activeTab {
			tabs = append(tabs, ActiveTabStyle.Render(name))
		} else {
			tabs = append(tabs, InactiveTabStyle.Render(name))
		}
	}
	if m.services.Username != "" {
		tabs = append(tabs, SubtextStyle.Render("  "+m.services.Username))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
