package coordinator

import (
	"testing"
	"time"
)

func TestComputeRetryDelay(t *testing.T) {
	base := 30 * time.Second
	backoffCap := 3600 * time.Second

	cases := []struct {
		retries int
		want    time.Duration
	}{
		{0, 30 * time.Second},
		{1, 60 * time.Second},
		{2, 120 * time.Second},
		{10, backoffCap}, // should saturate at the cap long before 10 doublings
	}

	for _, c := range cases {
		got := computeRetryDelay(c.retries, base, backoffCap)
		if got != c.want {
			t.Errorf("computeRetryDelay(%d) = %v, want %v", c.retries, got, c.want)
		}
	}
}

func TestComputeRetryDelayNeverExceedsCap(t *testing.T) {
	got := computeRetryDelay(50, 30*time.Second, 3600*time.Second)
	if got != 3600*time.Second {
		t.Errorf("got %v, want cap 3600s", got)
	}
}
