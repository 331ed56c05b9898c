package signal

import (
	"testing"
	"time"
)

func TestJoinRateLimiter_BlocksAtLimit(t *testing.T) {
	rl := NewJoinRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("alice") {
			t.Fatalf("attempt %d denied, want allowed", i+1)
		}
	}
	if rl.Allow("alice") {
		t.Fatal("attempt over the limit allowed")
	}
	// Other identities are independent.
	if !rl.Allow("bob") {
		t.Fatal("unrelated identity denied")
	}
}

func TestJoinRateLimiter_WindowSlides(t *testing.T) {
	rl := NewJoinRateLimiter(1, 20*time.Millisecond)

	if !rl.Allow("alice") {
		t.Fatal("first attempt denied")
	}
	if rl.Allow("alice") {
		t.Fatal("second attempt inside window allowed")
	}
	time.Sleep(30 * time.Millisecond)
	if !rl.Allow("alice") {
		t.Fatal("attempt after window expiry denied")
	}
}

func TestJoinRateLimiter_DisabledWhenZero(t *testing.T) {
	rl := NewJoinRateLimiter(0, time.Minute)
	for i := 0; i < 10; i++ {
		if !rl.Allow("alice") {
			t.Fatal("disabled limiter denied an attempt")
		}
	}
}
