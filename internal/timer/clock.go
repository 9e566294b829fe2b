package timer

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// Token cancels a scheduled callback. Cancel is safe to call more than once.
type Token interface {
	Cancel()
}

// Scheduler runs callbacks on a background goroutine. Callbacks are expected
// to serialise themselves.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Token
	After(delay time.Duration, fn func()) Token
}

type realScheduler struct{}

// RealScheduler is backed by time.Ticker and time.AfterFunc.
var RealScheduler Scheduler = realScheduler{}

type tickerToken struct {
	once sync.Once
	done chan struct{}
}

func (t *tickerToken) Cancel() {
	t.once.Do(func() { close(t.done) })
}

func (realScheduler) Every(interval time.Duration, fn func()) Token {
	token := &tickerToken{done: make(chan struct{})}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-token.done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return token
}

type afterToken struct {
	t *time.Timer
}

func (a afterToken) Cancel() { a.t.Stop() }

func (realScheduler) After(delay time.Duration, fn func()) Token {
	return afterToken{t: time.AfterFunc(delay, fn)}
}
