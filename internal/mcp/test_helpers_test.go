package mcp

import (
	"context"
	"encoding/json"
	"time"

	"signal-desk/internal/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"
)

type stubSignalService struct {
	listed     []domain.Signal
	trends     []domain.TrendState
	settings   domain.Settings
	lastFilter domain.SignalFilter
}

func (s *stubSignalService) ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error) {
	s.lastFilter = filter
	return append([]domain.Signal(nil), s.listed...), nil
}

func (s *stubSignalService) Trends(ctx context.Context) []domain.TrendState {
	return append([]domain.TrendState(nil), s.trends...)
}

func (s *stubSignalService) Pairs() []string {
	return append([]string(nil), domain.SupportedPairs...)
}

func (s *stubSignalService) Settings() domain.Settings {
	return s.settings
}

type stubSessions struct {
	valid string
	err   error
}

func (s stubSessions) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if s.err != nil {
		return domain.User{}, s.err
	}
	if token != s.valid {
		return domain.User{}, domain.ErrAuthorization
	}
	return domain.User{ID: "u-1", Email: "trader@example.com", Role: domain.RoleUser}, nil
}

func testServer() (*sdkmcp.Server, *stubSignalService) {
	generated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	signals := &stubSignalService{
		listed: []domain.Signal{{
			ID:            "sig-1",
			Pair:          "EUR/USD",
			Direction:     domain.DirectionCall,
			Timeframe:     "5m",
			GeneratedAt:   generated,
			ExpiresAt:     generated.Add(5 * time.Minute),
			Price:         decimal.RequireFromString("1.0851"),
			RSI:           27.5,
			MACDHistogram: 0.0003,
			Zone:          domain.ZoneSupport,
			QualityScore:  82,
		}},
		trends: []domain.TrendState{
			{Pair: "EUR/USD", Trend: domain.TrendBullish, LastUpdated: generated},
			{Pair: "GBP/USD", Trend: domain.TrendNeutral},
		},
		settings: domain.DefaultSettings(),
	}

	srv := NewServer(nil, signals)
	return srv, signals
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
