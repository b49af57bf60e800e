package service

import (
	"context"
	"sync"
	"time"
)

// Ticker is the part of time.Ticker an Interval needs
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the TickerFunc backed by time.NewTicker
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Interval runs a function immediately and then periodically. At most one
// schedule is active: Start cancels the previous one and waits for it to exit.
// fn must not call Start or Stop on the same Interval.
type Interval struct {
	newTicker TickerFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewInterval creates an idle interval
func NewInterval(newTicker TickerFunc) *Interval {
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	return &Interval{newTicker: newTicker}
}

// Start runs fn now and every d until Stop or the next Start.
// The context passed to fn is cancelled when the schedule ends.
func (i *Interval) Start(d time.Duration, fn func(ctx context.Context)) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	ticker := i.newTicker(d)

	i.cancel = cancel
	i.done = done

	go func() {
		defer close(done)
		defer ticker.Stop()

		fn(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				if ctx.Err() != nil {
					return
				}
				fn(ctx)
			}
		}
	}()
}

// Stop cancels the active schedule, if any, and waits for it to exit
func (i *Interval) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.stopLocked()
}

// Running reports whether a schedule is active
func (i *Interval) Running() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.cancel != nil
}

func (i *Interval) stopLocked() {
	if i.cancel == nil {
		return
	}
	i.cancel()
	<-i.done
	i.cancel = nil
	i.done = nil
}
