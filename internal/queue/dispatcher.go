package queue

import (
	"context"
	"sync"
)

// Dispatcher runs tasks on per-user serial lanes: tasks for the same user
// execute one at a time in submission order, tasks for different users run
// in parallel. Photo accumulation order is part of the committed listing,
// which is why updates from one user must never be reordered.
type Dispatcher struct {
	mu       sync.Mutex
	lanes    map[int64]chan func()
	laneSize int
	closed   bool
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher whose per-user lanes buffer up to
// laneSize tasks before Dispatch blocks
func NewDispatcher(laneSize int) *Dispatcher {
	if laneSize <= 0 {
		laneSize = 16
	}
	return &Dispatcher{
		lanes:    make(map[int64]chan func()),
		laneSize: laneSize,
	}
}

// Dispatch enqueues a task on the user's lane, creating the lane on first
// use. Returns false once the dispatcher is shut down. Dispatch is meant
// to be called from a single producer (the update loop); it must not be
// called concurrently with Shutdown.
func (d *Dispatcher) Dispatch(userID int64, task func()) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	lane, ok := d.lanes[userID]
	if !ok {
		lane = make(chan func(), d.laneSize)
		d.lanes[userID] = lane
		d.wg.Add(1)
		go d.run(lane)
	}
	d.mu.Unlock()

	lane <- task
	return true
}

func (d *Dispatcher) run(lane chan func()) {
	defer d.wg.Done()
	for task := range lane {
		task()
	}
}

// Shutdown stops accepting tasks, lets every lane drain, and waits for
// completion or context expiry
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, lane := range d.lanes {
			close(lane)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
