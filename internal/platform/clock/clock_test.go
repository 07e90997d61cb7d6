package clock

import (
	"testing"
	"time"
)

func TestManualAdvancesOnlyWhenTold(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	m := NewManual(start)
	if !m.Now().Equal(start) {
		t.Fatalf("now = %v, want %v", m.Now(), start)
	}
	m.Advance(30 * time.Second)
	if got := m.Now().Sub(start); got != 30*time.Second {
		t.Fatalf("advanced %v, want 30s", got)
	}
	m.Set(start)
	if !m.Now().Equal(start) {
		t.Fatalf("set did not rewind")
	}
}
