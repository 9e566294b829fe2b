package recovery

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"pomodoro/timer/internal/model"
)

// Flusher is the part of the timer the guard needs.
type Flusher interface {
	EmergencyFlush(save func(model.SessionRecord) error) bool
}

// Guard snapshots the running phase when a lifecycle signal arrives.
type Guard struct {
	flusher   Flusher
	recoverer *Recoverer
}

func NewGuard(flusher Flusher, recoverer *Recoverer) *Guard {
	return &Guard{flusher: flusher, recoverer: recoverer}
}

// Wait blocks until a signal arrives or ctx is done. On a signal it flushes
// and returns the signal; on cancellation it returns nil without flushing.
func (g *Guard) Wait(ctx context.Context, signals <-chan os.Signal) os.Signal {
	select {
	case sig := <-signals:
		log.Info().Str("signal", sig.String()).Msg("Lifecycle signal received")
		g.Flush()
		return sig
	case <-ctx.Done():
		return nil
	}
}

// Flush snapshots the running phase, if any, into the recovery slot.
func (g *Guard) Flush() bool {
	return g.flusher.EmergencyFlush(g.recoverer.Save)
}
