package mcp

import (
	"context"

	"signal-desk/internal/domain"
)

// SignalReader exposes the read side of the signal service.
type SignalReader interface {
	ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error)
	Trends(ctx context.Context) []domain.TrendState
	Pairs() []string
	Settings() domain.Settings
}

// SessionVerifier resolves a bearer token to its user.
type SessionVerifier interface {
	Authenticate(ctx context.Context, token string) (domain.User, error)
}
