// Package recovery keeps an in-flight phase from being lost when the process
// is killed before the asynchronous session writer has caught up. The phase is
// snapshotted synchronously into a single slot and replayed on next start.
package recovery

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"pomodoro/timer/internal/model"
)

var ErrMalformedPayload = errors.New("malformed recovery payload")

type payload struct {
	Type           model.PhaseType `json:"type"`
	StartedAt      time.Time       `json:"startedAt"`
	EndedAt        time.Time       `json:"endedAt"`
	Duration       int             `json:"duration"`
	SessionGroupID string          `json:"sessionGroupId"`
	Completed      bool            `json:"completed"`
}

func Encode(record model.SessionRecord) ([]byte, error) {
	raw, err := json.Marshal(payload{
		Type:           record.Type,
		StartedAt:      record.StartedAt.UTC(),
		EndedAt:        record.EndedAt.UTC(),
		Duration:       record.Duration,
		SessionGroupID: record.SessionGroupID,
		Completed:      record.Completed,
	})
	if err != nil {
		return nil, fmt.Errorf("encode recovery payload: %w", err)
	}
	return raw, nil
}

func Decode(raw []byte) (model.SessionRecord, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.SessionRecord{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	switch {
	case !p.Type.Valid():
		return model.SessionRecord{}, fmt.Errorf("%w: unknown type %q", ErrMalformedPayload, p.Type)
	case p.SessionGroupID == "":
		return model.SessionRecord{}, fmt.Errorf("%w: missing sessionGroupId", ErrMalformedPayload)
	case p.StartedAt.IsZero() || p.EndedAt.IsZero():
		return model.SessionRecord{}, fmt.Errorf("%w: missing timestamps", ErrMalformedPayload)
	case p.Duration < 0:
		return model.SessionRecord{}, fmt.Errorf("%w: negative duration", ErrMalformedPayload)
	}
	return model.SessionRecord{
		SessionGroupID: p.SessionGroupID,
		Type:           p.Type,
		StartedAt:      p.StartedAt.UTC(),
		EndedAt:        p.EndedAt.UTC(),
		Duration:       p.Duration,
		Completed:      p.Completed,
	}, nil
}
