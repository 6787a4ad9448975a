package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// NewServer builds a read-only MCP server over the signal service. Tools and
// resources only read in-memory state, so calls are not given their own deadline.
func NewServer(tracer trace.Tracer, signals SignalReader) *sdkmcp.Server {
	srv := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "signal-desk-mcp",
		Version: "1.0.0",
	}, &sdkmcp.ServerOptions{
		Instructions: "Read currency pair signals, per-pair trends and the active quality settings. Settings are changed through the REST API only.",
		Logger:       slog.Default(),
	})
	if tracer != nil {
		srv.AddReceivingMiddleware(traceReads(tracer))
	}

	registerTools(srv, signals)
	registerResources(srv, signals)
	return srv
}

// NewHTTPTransportHandler serves the streamable HTTP transport to logged-in users.
func NewHTTPTransportHandler(server *sdkmcp.Server, sessions SessionVerifier) http.Handler {
	base := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, nil)
	return requireSession(limitBody(base), sessions)
}

// traceReads opens one span per tool call or resource read. Protocol chatter
// (initialize, ping, list) is passed through untraced.
func traceReads(tracer trace.Tracer) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var (
				name  string
				attrs []attribute.KeyValue
			)
			switch r := req.(type) {
			case *sdkmcp.CallToolRequest:
				tool := strings.TrimSpace(r.Params.Name)
				name = "mcp.tool." + tool
				attrs = append(attrs, attribute.String("mcp.tool", tool))
			case *sdkmcp.ReadResourceRequest:
				uri := strings.TrimSpace(r.Params.URI)
				name = "mcp.resource." + resourceScheme(uri)
				attrs = append(attrs, attribute.String("mcp.resource.uri", uri))
			default:
				return next(ctx, method, req)
			}

			ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
			defer span.End()
			result, err := next(ctx, method, req)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return result, err
		}
	}
}

// resourceScheme maps "signals://latest?pair=EUR/USD" to "signals".
func resourceScheme(uri string) string {
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok || scheme == "" {
		return "unknown"
	}
	return scheme
}
