package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"signal-desk/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

type stubSignalQuerier struct {
	signals []domain.Signal
	err     error
	filters []domain.SignalFilter
}

func (s *stubSignalQuerier) ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error) {
	s.filters = append(s.filters, filter)
	return s.signals, s.err
}

type stubTrendQuerier struct {
	trends []domain.TrendState
}

func (s *stubTrendQuerier) Trends(ctx context.Context) []domain.TrendState { return s.trends }
func (s *stubTrendQuerier) Pairs() []string                               { return []string{"EUR/USD", "USD/JPY"} }
func (s *stubTrendQuerier) Settings() domain.Settings                     { return domain.DefaultSettings() }

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, email, password string) (domain.User, error) {
	return domain.User{}, errors.New("not used")
}

func testSignal(pair string, quality int) domain.Signal {
	return domain.Signal{
		ID:           pair,
		Pair:         pair,
		Direction:    domain.DirectionCall,
		Timeframe:    "5m",
		GeneratedAt:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Price:        decimal.RequireFromString("1.08512"),
		RSI:          28.4,
		Zone:         domain.ZoneSupport,
		QualityScore: quality,
	}
}

func testServices() (Services, *stubSignalQuerier) {
	signals := &stubSignalQuerier{signals: []domain.Signal{testSignal("EUR/USD", 82)}}
	trends := &stubTrendQuerier{trends: []domain.TrendState{
		{Pair: "EUR/USD", Trend: domain.TrendBullish},
		{Pair: "USD/JPY", Trend: domain.TrendNeutral},
	}}
	return Services{Signals: signals, Trends: trends, Username: "admin@example.com"}, signals
}

func TestAppTabNavigation(t *testing.T) {
	svc, _ := testServices()
	m := NewAppModel(svc)
	m.SetSize(140, 40)

	if m.ActiveTab() != TabDashboard {
		t.Fatalf("expected dashboard tab, got %d", m.ActiveTab())
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if updated.(AppModel).ActiveTab() != TabSignals {
		t.Fatalf("expected signals tab after tab key")
	}
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyTab})
	if updated.(AppModel).ActiveTab() != TabDashboard {
		t.Fatalf("expected tab to wrap to dashboard")
	}
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if updated.(AppModel).ActiveTab() != TabSignals {
		t.Fatalf("expected shift+tab to wrap to signals")
	}
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	if updated.(AppModel).ActiveTab() != TabDashboard {
		t.Fatalf("expected 1 to select dashboard")
	}
}

func TestAppQuit(t *testing.T) {
	svc, _ := testServices()
	m := NewAppModel(svc)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if view := updated.View(); view != "Goodbye!\n" {
		t.Fatalf("unexpected quit view %q", view)
	}
}

func TestAppRoutesDataToOwningScreen(t *testing.T) {
	svc, _ := testServices()
	m := NewAppModel(svc)
	m.SetSize(140, 40)

	// Explorer data arrives while the dashboard is active.
	updated, _ := m.Update(filteredSignalsMsg{testSignal("USD/JPY", 70), testSignal("EUR/USD", 90)})
	app := updated.(AppModel)
	if app.signals.SignalCount() != 2 {
		t.Fatalf("expected explorer to receive signals, got %d", app.signals.SignalCount())
	}
	if len(app.dashboard.Signals()) != 0 {
		t.Fatal("dashboard must not receive explorer results")
	}
	if !strings.Contains(app.View(), "admin@example.com") {
		t.Fatal("expected username in tab bar")
	}
}

func TestNewSSHServer(t *testing.T) {
	svc, signals := testServices()
	srv, err := NewSSHServer(SSHConfig{
		Addr:        "127.0.0.1:0",
		HostKeyPath: filepath.Join(t.TempDir(), "host_ed25519"),
	}, signals, svc.Trends, stubVerifier{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.Addr != "127.0.0.1:0" || srv.PasswordHandler == nil {
		t.Fatalf("unexpected server: addr=%q", srv.Addr)
	}
}
