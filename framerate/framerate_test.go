package framerate

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	for _, entry := range []struct {
		rate     T
		expected time.Duration
	}{
		{PerSecond(10), 100 * time.Millisecond},
		{PerSecond(4), 250 * time.Millisecond},
		{PerSecond(1), time.Second},
		{T{Value: 60, Unit: UnitMinute}, time.Second},
		{PerSecond(0), 0},
		{T{Value: 1, Unit: Unit_End}, 0},
	} {
		if got := entry.rate.Duration(); got != entry.expected {
			t.Errorf("%v: expected=%v, got=%v", entry.rate, entry.expected, got)
		}
	}
}

func TestValid(t *testing.T) {
	if !PerSecond(1).Valid() {
		t.Error("1/s must be valid")
	}
	if (T{Value: 5, Unit: Unit_End}).Valid() || PerSecond(-1).Valid() {
		t.Error("invalid rates accepted")
	}
}
