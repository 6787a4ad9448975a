package job

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

const sessionSweepTick = 10 * time.Minute

// ExpiredSessionPurger is implemented by session stores without native key expiry.
type ExpiredSessionPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

type SessionSweeper struct {
	tracer trace.Tracer
	purger ExpiredSessionPurger
	tick   time.Duration
}

func NewSessionSweeper(tracer trace.Tracer, purger ExpiredSessionPurger) *SessionSweeper {
	return &SessionSweeper{
		tracer: tracer,
		purger: purger,
		tick:   sessionSweepTick,
	}
}

func (j *SessionSweeper) Start(ctx context.Context) {
	if j == nil || j.purger == nil {
		<-ctx.Done()
		return
	}

	log.Info().Dur("interval", j.tick).Msg("session sweeper starting")
	ticker := time.NewTicker(j.tick)
	defer ticker.Stop()

	j.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("session sweeper stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *SessionSweeper) sweep(ctx context.Context) {
	if j.tracer != nil {
		_, span := j.tracer.Start(ctx, "session-job.sweep")
		defer span.End()
	}
	removed, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("session sweep failed")
		return
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Msg("expired sessions purged")
	}
}
