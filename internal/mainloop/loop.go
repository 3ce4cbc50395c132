// Package mainloop provides a single goroutine that runs posted tasks in
// order. It is the execution context tracker notifications are delivered on.
package mainloop

import (
	"sync"

	log "github.com/echocat/slf4g"
)

// Loop runs tasks one at a time on its own goroutine, in posting order.
// The queue is unbounded so Post never blocks.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
}

// New starts a loop.
func New() *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Post queues task. Tasks posted after Close are dropped.
func (l *Loop) Post(task func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		log.Debug("Main loop closed, dropping task.")
		return
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	l.signal()
}

// Flush blocks until every task posted before the call has run.
// It must not be called from a task.
func (l *Loop) Flush() {
	barrier := make(chan struct{})

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.queue = append(l.queue, func() { close(barrier) })
	l.mu.Unlock()

	l.signal()
	<-barrier
}

// Close runs the tasks already queued and stops the loop. It is safe to call
// more than once but must not be called from a task.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	l.signal()
	<-l.done
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			closed := l.closed
			l.mu.Unlock()
			if closed {
				return
			}
			<-l.wake
			continue
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		runTask(task)
	}
}

// runTask keeps the loop alive when a task panics.
func runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.With("panic", r).
				Error("Main loop task panicked.")
		}
	}()
	task()
}
