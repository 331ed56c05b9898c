package signal

import (
	"sync"
	"time"

	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/domain"
)

// JoinRateLimiter bounds how often one identity may join rooms, over a
// sliding window.
type JoinRateLimiter struct {
	mu       sync.Mutex
	history  map[domain.Identity][]time.Time
	limit    int
	interval time.Duration
}

func NewJoinRateLimiter(limit int, interval time.Duration) *JoinRateLimiter {
	return &JoinRateLimiter{
		history:  make(map[domain.Identity][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *JoinRateLimiter) Allow(identity domain.Identity) bool {
	if rl.limit <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[identity]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[identity] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[identity] = fresh
	return true
}
