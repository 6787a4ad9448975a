package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, signals SignalReader) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "signals_list",
		Description: "Get recent quality-filtered signals, newest first, optionally for one pair",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in signalsListInput) (*mcp.CallToolResult, signalsListOutput, error) {
		if signals == nil {
			return nil, signalsListOutput{}, fmt.Errorf("signal service unavailable")
		}
		filter, err := normalizeSignalFilter(in)
		if err != nil {
			return nil, signalsListOutput{}, err
		}
		result, err := signals.ListSignals(ctx, filter)
		if err != nil {
			return nil, signalsListOutput{}, err
		}
		return nil, signalsListOutput{Signals: toSignalViews(result)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "trends_list",
		Description: "Get the bullish/bearish/neutral trend for every pair",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, trendsListOutput, error) {
		if signals == nil {
			return nil, trendsListOutput{}, fmt.Errorf("signal service unavailable")
		}
		return nil, trendsListOutput{Trends: toTrendViews(signals.Trends(ctx))}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pairs_list",
		Description: "Get the currency pairs evaluated by the service",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, pairsListOutput, error) {
		if signals == nil {
			return nil, pairsListOutput{}, fmt.Errorf("signal service unavailable")
		}
		return nil, pairsListOutput{Pairs: signals.Pairs()}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "settings_get",
		Description: "Get the active minimum signal quality and indicator sensitivity",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, settingsOutput, error) {
		if signals == nil {
			return nil, settingsOutput{}, fmt.Errorf("signal service unavailable")
		}
		s := signals.Settings()
		return nil, settingsOutput{
			MinimumSignalQuality: s.MinimumSignalQuality,
			IndicatorSensitivity: s.IndicatorSensitivity,
		}, nil
	})
}
