package job

import (
	"context"
	"time"

	"signal-desk/internal/domain"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultEvaluationInterval = 15 * time.Second

// PriceStepper advances the market feed by one bar.
type PriceStepper interface {
	Step()
}

type SignalEvaluator interface {
	EvaluateAll(ctx context.Context) ([]domain.Signal, error)
}

// SignalPoller is the single writer of the evaluation pipeline: every tick it advances
// the feed and evaluates every pair.
type SignalPoller struct {
	tracer    trace.Tracer
	feed      PriceStepper
	evaluator SignalEvaluator
	interval  time.Duration
}

func NewSignalPoller(tracer trace.Tracer, feed PriceStepper, evaluator SignalEvaluator, interval time.Duration) *SignalPoller {
	if interval <= 0 {
		interval = DefaultEvaluationInterval
	}
	return &SignalPoller{
		tracer:    tracer,
		feed:      feed,
		evaluator: evaluator,
		interval:  interval,
	}
}

// Start evaluates once immediately, then on every tick. Blocks until ctx is cancelled.
func (p *SignalPoller) Start(ctx context.Context) {
	if p.evaluator == nil {
		log.Warn().Msg("signal poller disabled: no evaluator")
		<-ctx.Done()
		return
	}

	log.Info().Dur("interval", p.interval).Msg("signal poller starting")
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("signal poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *SignalPoller) tick(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "job.evaluate")
	defer span.End()

	if p.feed != nil {
		p.feed.Step()
	}
	recorded, err := p.evaluator.EvaluateAll(ctx)
	span.SetAttributes(attribute.Int("signals", len(recorded)))
	if err != nil {
		log.Error().Err(err).Msg("signal evaluation failed")
		return
	}
	if len(recorded) > 0 {
		log.Debug().Int("signals", len(recorded)).Msg("evaluation tick recorded signals")
	}
}
