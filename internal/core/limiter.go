package core

// limiter.go bounds how many schedule generations run at once.
//
// Parsing three workbooks and allocating rooms is CPU and memory bound, so
// the service admits at most a fixed number of generations. A request that
// finds every slot busy waits up to maxWait and then fails with
// ErrTooManyGenerations. Shutdown uses Wait to let admitted generations
// finish.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyGenerations is returned when no generation slot frees up in
// time. Clients should retry after a short delay.
var ErrTooManyGenerations = errors.New("too many concurrent generations, please try again later")

const (
	// DefaultMaxConcurrent is used when the configured limit is not positive.
	DefaultMaxConcurrent = 4

	// DefaultMaxWait is used when the configured wait is not positive.
	DefaultMaxWait = 15 * time.Second
)

// GenerationLimiter is a counting semaphore with a bounded wait.
type GenerationLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
	done    chan struct{} // signalled on every release
}

// NewGenerationLimiter allows maxConcurrent generations at a time.
func NewGenerationLimiter(maxConcurrent int, maxWait time.Duration) *GenerationLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	return &GenerationLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		done:    make(chan struct{}, 1),
	}
}

// Acquire takes a slot, waiting at most maxWait. The caller must Release
// after a nil return.
func (l *GenerationLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-timer.C:
		return ErrTooManyGenerations
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot only if one is free right now.
func (l *GenerationLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return true
	default:
		return false
	}
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *GenerationLimiter) Release() {
	l.active.Add(-1)
	<-l.slots

	select {
	case l.done <- struct{}{}:
	default:
	}
}

// Active returns the number of generations holding a slot.
func (l *GenerationLimiter) Active() int {
	return int(l.active.Load())
}

// Wait blocks until no generation holds a slot or ctx ends.
func (l *GenerationLimiter) Wait(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
		case <-ticker.C:
		}
	}
	return nil
}

// LimiterStatus is a point-in-time view of the limiter.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports current usage for the health endpoint.
func (l *GenerationLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.Active(),
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}
