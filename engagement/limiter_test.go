package engagement

import (
	"testing"
	"time"
)

func TestRateLimiterBlocksAfterMax(t *testing.T) {
	rl := newRateLimiter(2, 200*time.Millisecond)
	ip := "203.0.113.10"

	if !rl.allow(ip) || !rl.allow(ip) {
		t.Fatalf("expected first two requests to be allowed")
	}
	if rl.allow(ip) {
		t.Fatalf("expected third request to be blocked")
	}
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	rl := newRateLimiter(1, 150*time.Millisecond)
	ip := "203.0.113.20"

	if !rl.allow(ip) {
		t.Fatalf("expected first request to be allowed")
	}
	if rl.allow(ip) {
		t.Fatalf("expected second request to be blocked")
	}

	time.Sleep(200 * time.Millisecond)
	if !rl.allow(ip) {
		t.Fatalf("expected request after window to be allowed")
	}
}

func TestRateLimiterIsPerKey(t *testing.T) {
	rl := newRateLimiter(1, 200*time.Millisecond)

	if !rl.allow("203.0.113.30") {
		t.Fatalf("expected first key to be allowed")
	}
	if !rl.allow("203.0.113.31") {
		t.Fatalf("expected second key to be allowed independently")
	}
	if rl.allow("203.0.113.30") {
		t.Fatalf("expected first key to be blocked after max")
	}
}
