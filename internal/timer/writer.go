package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"pomodoro/timer/internal/model"
)

const writeQueueSize = 64

var (
	ErrWriterClosed = errors.New("session writer closed")
	ErrWriterBusy   = errors.New("session writer queue full")
)

// SessionSink is the durable store the writer appends to.
type SessionSink interface {
	InsertSession(ctx context.Context, record *model.SessionRecord) (string, error)
}

// Recorder accepts finished fragments. Submit must not block on storage; the
// returned Pending may be ignored.
type Recorder interface {
	Submit(record model.SessionRecord) *Pending
}

// Pending is the eventual outcome of a submitted record.
type Pending struct {
	done chan struct{}
	id   string
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Resolved returns an already completed Pending.
func Resolved(id string, err error) *Pending {
	p := newPending()
	p.resolve(id, err)
	return p
}

func (p *Pending) resolve(id string, err error) {
	p.id = id
	p.err = err
	close(p.done)
}

func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.id, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type writeJob struct {
	record  *model.SessionRecord
	pending *Pending
}

// Writer inserts records on a single goroutine, in submission order. Failed
// inserts are logged and dropped.
type Writer struct {
	sink    SessionSink
	timeout time.Duration
	jobs    chan writeJob
	stopped chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewWriter(sink SessionSink, timeout time.Duration) *Writer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	w := &Writer{
		sink:    sink,
		timeout: timeout,
		jobs:    make(chan writeJob, writeQueueSize),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit queues record without waiting. When the queue is full the record is
// dropped and the returned Pending reports ErrWriterBusy.
func (w *Writer) Submit(record model.SessionRecord) *Pending {
	return w.enqueue(&record)
}

// Flush waits until every record submitted before the call has been handled.
func (w *Writer) Flush(ctx context.Context) error {
	_, err := w.enqueue(nil).Wait(ctx)
	if errors.Is(err, ErrWriterClosed) {
		return nil
	}
	return err
}

// Close drains queued records and stops the writer goroutine.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.stopped
		return
	}
	w.closed = true
	close(w.jobs)
	w.mu.Unlock()
	<-w.stopped
}

func (w *Writer) enqueue(record *model.SessionRecord) *Pending {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		if record != nil {
			log.Warn().
				Str("sessionGroupId", record.SessionGroupID).
				Msg("Session writer closed, record dropped")
		}
		return Resolved("", ErrWriterClosed)
	}
	pending := newPending()
	job := writeJob{record: record, pending: pending}
	if record == nil {
		// Flush barriers may wait for room.
		w.jobs <- job
		return pending
	}
	select {
	case w.jobs <- job:
		return pending
	default:
		log.Error().
			Str("sessionGroupId", record.SessionGroupID).
			Str("type", string(record.Type)).
			Int("duration", record.Duration).
			Msg("Session writer queue full, record dropped")
		return Resolved("", ErrWriterBusy)
	}
}

func (w *Writer) run() {
	defer close(w.stopped)
	for job := range w.jobs {
		if job.record == nil {
			job.pending.resolve("", nil)
			continue
		}
		job.pending.resolve(w.insert(job.record))
	}
}

func (w *Writer) insert(record *model.SessionRecord) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	id, err := w.sink.InsertSession(ctx, record)
	if err != nil {
		log.Error().
			Err(err).
			Str("sessionGroupId", record.SessionGroupID).
			Str("type", string(record.Type)).
			Int("duration", record.Duration).
			Msg("Failed to persist session record")
		return "", err
	}
	log.Debug().
		Str("id", id).
		Str("sessionGroupId", record.SessionGroupID).
		Str("type", string(record.Type)).
		Int("duration", record.Duration).
		Bool("completed", record.Completed).
		Msg("Session record persisted")
	return id, nil
}
