package http

import (
	"sync/atomic"
	"time"
)

// rateLimiter caps inbound frames per connection per minute. A limit of
// zero disables it.
type rateLimiter struct {
	limit   int64
	counter atomic.Int64
	reset   *time.Ticker
}

func newRateLimiter(limit int) *rateLimiter {
	r := &rateLimiter{limit: int64(limit)}
	if limit > 0 {
		r.reset = time.NewTicker(time.Minute)
	}
	return r
}

func (r *rateLimiter) allow() bool {
	if r == nil || r.limit <= 0 {
		return true
	}
	return r.counter.Add(1) <= r.limit
}

func (r *rateLimiter) startReset(stop <-chan struct{}) {
	if r == nil || r.reset == nil {
		return
	}
	go func() {
		for {
			select {
			case <-r.reset.C:
				r.counter.Store(0)
			case <-stop:
				r.reset.Stop()
				return
			}
		}
	}()
}
