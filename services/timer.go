package services

import (
	"sync"
	"time"
)

// StageTimer drives a countdown by calling a tick function on a fixed interval
// from its own goroutine. Start replaces any running countdown; Stop never
// blocks, so it is safe to call from inside a tick.
type StageTimer struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

func NewStageTimer(interval time.Duration) *StageTimer {
	if interval <= 0 {
		interval = time.Second
	}
	return &StageTimer{interval: interval}
}

// Start stops the current countdown and begins a new one.
func (t *StageTimer) Start(tick func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()

	stop := make(chan struct{})
	t.stop = stop
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				tick()
			}
		}
	}()
}

// Stop cancels the running countdown, if any.
func (t *StageTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// Running reports whether a countdown is active.
func (t *StageTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

func (t *StageTimer) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// Wait blocks until every countdown goroutine has exited. Call it after Stop,
// never from inside a tick.
func (t *StageTimer) Wait() {
	t.wg.Wait()
}
