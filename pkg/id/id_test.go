package id

import (
	"testing"
	"time"
)

func restoreClock(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { NowMs = func() int64 { return time.Now().UnixMilli() } })
}

func TestNextMonotonic(t *testing.T) {
	g := NewGenerator()
	prev := g.Next()
	for i := 0; i < 10000; i++ {
		next := g.Next()
		if prev.Compare(next) >= 0 {
			t.Fatalf("token %d not increasing: %s >= %s", i, prev, next)
		}
		prev = next
	}
}

func TestSameMillisecondDistinct(t *testing.T) {
	restoreClock(t)
	NowMs = func() int64 { return 42 }

	g := NewGenerator()
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		s := g.Next().String()
		if seen[s] {
			t.Fatalf("duplicate token %s", s)
		}
		seen[s] = true
	}
}

func TestClockRegressionPins(t *testing.T) {
	restoreClock(t)
	ms := int64(1000)
	NowMs = func() int64 { return ms }

	g := NewGenerator()
	a := g.Next()
	ms = 500 // clock goes backwards
	b := g.Next()
	if a.Compare(b) >= 0 {
		t.Fatalf("expected token after regression to still increase: %s >= %s", a, b)
	}
}

func TestStringWidthStable(t *testing.T) {
	g := NewGenerator()
	a := g.Next().String()
	b := g.Next().String()
	if len(a) != 24 || len(b) != 24 {
		t.Fatalf("expected 24-char hex tokens, got %d and %d", len(a), len(b))
	}
}
