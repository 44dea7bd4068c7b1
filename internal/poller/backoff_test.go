package poller

import (
	"testing"
	"time"
)

func TestNextDelay(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		base     time.Duration
		want     time.Duration
	}{
		{"success uses base", 0, 2 * time.Second, 2 * time.Second},
		{"below short tier", 4, 2 * time.Second, 2 * time.Second},
		{"short tier", 5, 2 * time.Second, 5 * time.Second},
		{"inside short tier", 9, 2 * time.Second, 5 * time.Second},
		{"long tier", 10, 2 * time.Second, 15 * time.Second},
		{"far into long tier", 250, 2 * time.Second, 15 * time.Second},
		{"zero base floors at 50ms", 0, 0, 50 * time.Millisecond},
		{"tiny base floors at 50ms", 3, 10 * time.Millisecond, 50 * time.Millisecond},
		{"base above short tier wins", 6, 8 * time.Second, 8 * time.Second},
		{"base above long tier wins", 12, 20 * time.Second, 20 * time.Second},
		{"short tier with zero base", 5, 0, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextDelay(tt.failures, tt.base); got != tt.want {
				t.Errorf("NextDelay(%d, %s) = %s, want %s", tt.failures, tt.base, got, tt.want)
			}
		})
	}
}

// TestNextDelay_NeverBelowFloor verifies that the delay is never below the
// base interval or MinDelay for any failure count.
func TestNextDelay_NeverBelowFloor(t *testing.T) {
	bases := []time.Duration{0, time.Millisecond, 49 * time.Millisecond, time.Second, time.Minute}
	for _, base := range bases {
		for failures := 0; failures <= 20; failures++ {
			got := NextDelay(failures, base)
			if got < base {
				t.Errorf("NextDelay(%d, %s) = %s, below base interval", failures, base, got)
			}
			if got < MinDelay {
				t.Errorf("NextDelay(%d, %s) = %s, below MinDelay", failures, base, got)
			}
		}
	}
}
