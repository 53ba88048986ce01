package history

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZanzyTHEbar/wine-quality-expert/internal/resilience"
)

// Recorder writes records on a background goroutine so a slow disk never delays a response
type Recorder struct {
	store   *Store
	breaker *resilience.CircuitBreaker
	queue   chan *Record
	dropped int64
	written int64

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewRecorder starts the writer goroutine with a queue of the given size
func NewRecorder(store *Store, queueSize int) *Recorder {
	r := &Recorder{
		store: store,
		breaker: resilience.NewCircuitBreaker("history", resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
		}),
		queue: make(chan *Record, queueSize),
	}

	r.wg.Add(1)
	go r.run()

	return r
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for rec := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := r.breaker.Call(func() error { return r.store.Save(ctx, rec) })
		cancel()

		var open *resilience.CircuitBreakerError
		switch {
		case err == nil:
			atomic.AddInt64(&r.written, 1)
		case errors.As(err, &open):
			atomic.AddInt64(&r.dropped, 1)
			slog.Debug("History writes suspended", "id", rec.ID, "error", err)
		default:
			slog.Error("Failed to record prediction", "id", rec.ID, "error", err)
		}
	}
}

// Submit queues rec without blocking; it reports false when the queue is full
func (r *Recorder) Submit(rec *Record) bool {
	select {
	case r.queue <- rec:
		return true
	default:
		atomic.AddInt64(&r.dropped, 1)
		slog.Warn("History queue full, dropping record", "id", rec.ID)
		return false
	}
}

// Close drains the queue and waits for the writer. Submit must not be called afterwards.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.queue)
		r.wg.Wait()
	})
}

// Stats reports queue usage
func (r *Recorder) Stats() map[string]interface{} {
	return map[string]interface{}{
		"queued":  len(r.queue),
		"written": atomic.LoadInt64(&r.written),
		"dropped": atomic.LoadInt64(&r.dropped),
		"breaker": r.breaker.Stats(),
	}
}
