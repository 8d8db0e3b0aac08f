package worker

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoff doubles from 2s per attempt, capped at limit (or 5m when
// limit is shorter than the base), plus up to 250ms of jitter.
func ExponentialBackoff(attempt int, limit time.Duration) time.Duration {
	base := 2 * time.Second

	capDelay := limit
	if capDelay < base {
		capDelay = 5 * time.Minute
	}

	// attempt=0 => 2s
	// attempt=1 => 4s
	// attempt=2 => 8s
	multiple := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(base) * multiple)

	if delay > capDelay || delay <= 0 {
		delay = capDelay
	}

	delay += time.Duration(rand.Intn(250)) * time.Millisecond
	return delay
}
