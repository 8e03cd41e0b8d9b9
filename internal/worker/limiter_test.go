package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAllowsWithinBudget(t *testing.T) {
	l := NewLimiter(1000, 10)

	for i := 0; i < 10; i++ {
		if !l.Allow("https://nominatim.openstreetmap.org/search") {
			t.Fatalf("request %d: expected burst budget to allow", i)
		}
	}
}

func TestLimiterThrottles(t *testing.T) {
	l := NewLimiter(1, 1)

	url := "https://nominatim.openstreetmap.org/search"
	if !l.Allow(url) {
		t.Fatal("first request must pass")
	}
	if l.Allow(url) {
		t.Error("second immediate request must be throttled at 1 rps")
	}
}

func TestLimiterPerHost(t *testing.T) {
	l := NewLimiter(1, 1)

	if !l.Allow("https://hosta.example/search") {
		t.Fatal("first host must pass")
	}
	if !l.Allow("https://hostb.example/search") {
		t.Error("a different host has its own budget")
	}
}

func TestLimiterSetHostRate(t *testing.T) {
	l := NewLimiter(1, 1)
	l.SetHostRate("fast.example", 1000, 100)

	for i := 0; i < 50; i++ {
		if !l.Allow("https://fast.example/search") {
			t.Fatalf("request %d: expected custom host rate to allow", i)
		}
	}
}

func TestLimiterWaitRespectsContext(t *testing.T) {
	l := NewLimiter(0.001, 1) // effectively frozen after the first token

	url := "https://slow.example/search"
	if err := l.Wait(context.Background(), url); err != nil {
		t.Fatalf("first wait must pass: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, url); err == nil {
		t.Error("expected wait to fail once the context expires")
	}
}

func TestLimiterBadURL(t *testing.T) {
	l := NewLimiter(1, 1)
	if l.Allow("://not a url") {
		t.Error("unparseable url must not be allowed")
	}
}
