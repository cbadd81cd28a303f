package netio

import (
	"time"

	"github.com/cockroachdb/tokenbucket"
)

// Limiter shapes outbound bandwidth with a token-bucket rate limiter:
// configurable steady-state rate plus a burst allowance, matching the
// "configurable rate and burst ratio" outbound limiter. Depending on
// the channel's drop policy, traffic that would exceed the bucket is
// either delayed (NoDrop) or dropped (CanDrop).
type Limiter struct {
	bucket tokenbucket.TokenBucket
}

// NewLimiter builds a Limiter with the given steady-state rate
// (bytes/sec) and burst ratio (the bucket's capacity as a multiple of
// rate, e.g. 2.0 allows a 2-second burst at the full rate).
func NewLimiter(rateBytesPerSec float64, burstRatio float64) *Limiter {
	l := &Limiter{}
	burst := tokenbucket.Tokens(rateBytesPerSec * burstRatio)
	if burst <= 0 {
		burst = tokenbucket.Tokens(rateBytesPerSec)
	}
	l.bucket.Init(tokenbucket.Rate(rateBytesPerSec), burst)
	return l
}

// TryToFulfill reports whether size bytes may be sent immediately
// under the current bucket balance. When it cannot, it also reports
// how long the caller should wait before retrying — used by a NoDrop
// write queue to throttle instead of dropping.
func (l *Limiter) TryToFulfill(size int) (ok bool, retryAfter time.Duration) {
	return l.bucket.TryToFulfill(tokenbucket.Tokens(size))
}

// Update reconfigures the limiter's rate and burst, e.g. in response to
// a runtime configuration change.
func (l *Limiter) Update(rateBytesPerSec, burstRatio float64) {
	burst := tokenbucket.Tokens(rateBytesPerSec * burstRatio)
	if burst <= 0 {
		burst = tokenbucket.Tokens(rateBytesPerSec)
	}
	l.bucket.Update(tokenbucket.Rate(rateBytesPerSec), burst)
}
