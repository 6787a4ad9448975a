package tui

import (
	"context"

	"signal-desk/internal/domain"
)

// SignalQuerier provides qualifying signals to the TUI.
type SignalQuerier interface {
	ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error)
}

// TrendQuerier provides per-pair trend state to the TUI.
type TrendQuerier interface {
	Trends(ctx context.Context) []domain.TrendState
	Pairs() []string
	Settings() domain.Settings
}

// Services bundles the read-only dependencies injected into a TUI session.
type Services struct {
	Signals  SignalQuerier
	Trends   TrendQuerier
	Username string
}
