package poller

import "time"

// failure-count tiers that override the session's base interval
const (
	shortBackoffThreshold = 5
	shortBackoffDelay     = 5 * time.Second
	longBackoffThreshold  = 10
	longBackoffDelay      = 15 * time.Second
)

// MinDelay is the floor for every scheduled request; it keeps a zero-interval
// session from spinning.
const MinDelay = 50 * time.Millisecond

// NextDelay returns how long a session waits before its next request after
// the given number of consecutive failures.
//
// The result is max(tier, baseInterval, [MinDelay]) where tier is 15s from
// ten failures, 5s from five, and zero below that.
func NextDelay(failures int, baseInterval time.Duration) time.Duration {
	delay := baseInterval

	switch {
	case failures >= longBackoffThreshold:
		delay = longBackoffDelay
	case failures >= shortBackoffThreshold:
		delay = shortBackoffDelay
	}

	if delay < baseInterval {
		delay = baseInterval
	}
	if delay < MinDelay {
		delay = MinDelay
	}
	return delay
}
