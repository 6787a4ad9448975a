package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"signal-desk/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func TestSignalPollerStartEvaluatesImmediately(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	feed := &stubFeed{}
	stub := &stubEvaluator{}
	poller := NewSignalPoller(tracer, feed, stub, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(done)
	}()

	eventuallySignal(t, func() bool { return stub.count() > 0 })
	cancel()
	<-done

	if feed.count() != stub.count() {
		t.Fatalf("expected feed to step once per evaluation, steps=%d evaluations=%d", feed.count(), stub.count())
	}
}

func TestSignalPollerTicks(t *testing.T) {
	t.Parallel()

	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubEvaluator{}
	poller := NewSignalPoller(tracer, &stubFeed{}, stub, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Start(ctx)

	eventuallySignal(t, func() bool { return stub.count() >= 3 })
}

func TestSignalPollerSurvivesEvaluationError(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	stub := &stubEvaluator{err: errors.New("boom")}
	poller := NewSignalPoller(tracer, &stubFeed{}, stub, time.Hour)

	poller.tick(context.Background())
	poller.tick(context.Background())

	if stub.count() != 2 {
		t.Fatalf("expected evaluation to keep running after errors, got %d calls", stub.count())
	}
}

func TestSignalPollerDisabledWithoutEvaluator(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	poller := NewSignalPoller(tracer, nil, nil, 0)
	if poller.interval != DefaultEvaluationInterval {
		t.Fatalf("expected default interval, got %s", poller.interval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	poller.Start(ctx)
}

type stubFeed struct {
	mu    sync.Mutex
	steps int
}

func (s *stubFeed) Step() {
	s.mu.Lock()
	s.steps++
	s.mu.Unlock()
}

func (s *stubFeed) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}

type stubEvaluator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *stubEvaluator) EvaluateAll(ctx context.Context) ([]domain.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return []domain.Signal{{Pair: "EUR/USD"}}, s.err
}

func (s *stubEvaluator) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func eventuallySignal(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
