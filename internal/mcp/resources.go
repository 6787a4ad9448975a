package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, signals SignalReader) {
	server.AddResource(&mcp.Resource{
		URI:         "market://pairs",
		Name:        "supported-pairs",
		Description: "Currency pairs evaluated by the service",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if signals == nil {
			return nil, fmt.Errorf("signal service unavailable")
		}
		return jsonResource(req.Params.URI, signals.Pairs())
	})

	server.AddResource(&mcp.Resource{
		URI:         "market://timeframes",
		Name:        "supported-timeframes",
		Description: "Signal timeframes, shortest first",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return jsonResource(req.Params.URI, supportedTimeframes())
	})

	server.AddResource(&mcp.Resource{
		URI:         "settings://current",
		Name:        "settings-current",
		Description: "Active minimum signal quality and indicator sensitivity",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if signals == nil {
			return nil, fmt.Errorf("signal service unavailable")
		}
		s := signals.Settings()
		return jsonResource(req.Params.URI, settingsOutput{
			MinimumSignalQuality: s.MinimumSignalQuality,
			IndicatorSensitivity: s.IndicatorSensitivity,
		})
	})

	server.AddResource(&mcp.Resource{
		URI:         "trends://latest",
		Name:        "trends-latest",
		Description: "Trend state for every pair",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if signals == nil {
			return nil, fmt.Errorf("signal service unavailable")
		}
		return jsonResource(req.Params.URI, trendsListOutput{Trends: toTrendViews(signals.Trends(ctx))})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "signals://latest{?pair,limit}",
		Name:        "signals-latest",
		Description: "Recent quality-filtered signals with optional pair/limit query params",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if signals == nil {
			return nil, fmt.Errorf("signal service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "signals" || parsed.Host != "latest" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		input := signalsListInput{
			Pair:  parsed.Query().Get("pair"),
			Limit: defaultSignalLimit,
		}
		if rawLimit := strings.TrimSpace(parsed.Query().Get("limit")); rawLimit != "" {
			n, err := strconv.Atoi(rawLimit)
			if err != nil {
				return nil, fmt.Errorf("invalid limit: %s", rawLimit)
			}
			input.Limit = n
		}

		filter, err := normalizeSignalFilter(input)
		if err != nil {
			return nil, err
		}
		list, err := signals.ListSignals(ctx, filter)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, signalsListOutput{Signals: toSignalViews(list)})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
