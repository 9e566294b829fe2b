package recovery

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pomodoro/timer/internal/model"
)

// Sink stores replayed records. RestoreSession must be idempotent per
// fragment, since a slot that could not be cleared is replayed again.
type Sink interface {
	RestoreSession(ctx context.Context, record *model.SessionRecord) (id string, inserted bool, err error)
}

// Recoverer writes snapshots into the slot and replays them into the sink.
type Recoverer struct {
	slot    Slot
	sink    Sink
	timeout time.Duration

	mu       sync.Mutex
	replayed bool
}

func NewRecoverer(slot Slot, sink Sink, timeout time.Duration) *Recoverer {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Recoverer{slot: slot, sink: sink, timeout: timeout}
}

// Save synchronously stores record in the slot, replacing any older snapshot.
func (r *Recoverer) Save(record model.SessionRecord) error {
	raw, err := Encode(record)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.slot.Write(ctx, raw)
}

// Replay moves a pending snapshot into the sink. The slot is cleared only after
// the sink has stored the record, or when the payload cannot be decoded. It
// reports whether a new record was inserted. Once the slot has been handled, later calls
// in the same process do nothing.
func (r *Recoverer) Replay(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replayed {
		return false
	}

	raw, err := r.slot.Read(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read recovery slot")
		return false
	}
	if raw == nil {
		r.replayed = true
		return false
	}

	record, err := Decode(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Discarding unreadable recovery payload")
		if delErr := r.slot.Delete(ctx); delErr != nil {
			log.Warn().Err(delErr).Msg("Failed to clear recovery slot")
			return false
		}
		r.replayed = true
		return false
	}

	id, inserted, err := r.sink.RestoreSession(ctx, &record)
	if err != nil {
		log.Warn().
			Err(err).
			Str("sessionGroupId", record.SessionGroupID).
			Msg("Failed to replay recovered phase, keeping it for next start")
		return false
	}
	if err := r.slot.Delete(ctx); err != nil {
		log.Error().Err(err).Str("id", id).Msg("Recovered phase stored but slot could not be cleared")
	}
	r.replayed = true

	if !inserted {
		log.Info().
			Str("id", id).
			Str("sessionGroupId", record.SessionGroupID).
			Msg("Recovered phase was already stored")
		return false
	}

	log.Info().
		Str("id", id).
		Str("sessionGroupId", record.SessionGroupID).
		Str("type", string(record.Type)).
		Int("duration", record.Duration).
		Msg("Recovered phase replayed")
	return true
}
