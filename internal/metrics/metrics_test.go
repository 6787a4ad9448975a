package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.SignalsGenerated.WithLabelValues("EUR/USD", "CALL").Inc()
	m.ForwarderCycles.WithLabelValues("ok").Add(2)

	if got := testutil.ToFloat64(m.ForwarderCycles.WithLabelValues("ok")); got != 2 {
		t.Fatalf("expected 2 ok cycles, got %v", got)
	}

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `signaldesk_signals_generated_total{direction="CALL",pair="EUR/USD"} 1`) {
		t.Fatalf("expected generated counter in scrape output:\n%s", body)
	}
}
