package tracing

import (
	"context"
	"testing"
)

func TestInitTracerWithoutExport(t *testing.T) {
	ctx := context.Background()
	tp, tracer, err := InitTracer(ctx, "signal-desk-test", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			t.Fatalf("shutdown: %v", err)
		}
	}()

	_, span := tracer.Start(ctx, "test-span")
	if !span.SpanContext().IsValid() {
		t.Fatal("expected a recording span with a valid context")
	}
	span.End()
}
