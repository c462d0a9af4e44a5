package service

import "context"

// Limiter bounds the number of in-flight model calls (embeddings and
// generation) with a buffered-channel semaphore.
type Limiter struct {
	sem chan struct{}
}

// NewLimiter creates a limiter allowing up to n concurrent holders
// (4 if non-positive).
func NewLimiter(n int) *Limiter {
	if n <= 0 {
		n = 4
	}
	return &Limiter{sem: make(chan struct{}, n)}
}

// Acquire blocks until a slot is free or the context is cancelled.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire.
func (l *Limiter) Release() {
	<-l.sem
}
