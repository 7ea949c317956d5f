package clock_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/clock"
)

func TestFakeAdvanceAndSet(t *testing.T) {
	start := time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	c := clock.Fake(start)

	if !c.Now().Equal(start) {
		t.Fatalf("Now = %v, want %v", c.Now(), start)
	}
	c.Advance(90 * time.Minute)
	if want := start.Add(90 * time.Minute); !c.Now().Equal(want) {
		t.Errorf("after Advance Now = %v, want %v", c.Now(), want)
	}
	c.Set(start)
	if !c.Now().Equal(start) {
		t.Errorf("after Set Now = %v, want %v", c.Now(), start)
	}
}

func TestRealUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	if got := clock.Real(loc).Now().Location(); got != loc {
		t.Errorf("Real location = %v, want %v", got, loc)
	}
}
