package ratelimit

import (
	"fmt"
	"testing"
	"time"
)

func TestMemoryLimiter_BlocksAtLimit(t *testing.T) {
	limiter := NewMemoryLimiter(3, time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if res := limiter.Allow("login:1.2.3.4", now); !res.Allowed {
			t.Fatalf("attempt %d blocked, want allowed", i+1)
		}
	}
	if res := limiter.Allow("login:1.2.3.4", now); res.Allowed {
		t.Fatal("fourth attempt allowed, want blocked")
	}
}

func TestMemoryLimiter_WindowRollsOver(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)

	if res := limiter.Allow("k", now); !res.Allowed {
		t.Fatal("first attempt blocked")
	}
	if res := limiter.Allow("k", now); res.Allowed {
		t.Fatal("second attempt in same window allowed")
	}
	if res := limiter.Allow("k", now.Add(time.Minute)); !res.Allowed {
		t.Fatal("attempt in next window blocked")
	}
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Minute)
	now := time.Now().UTC()

	if res := limiter.Allow("a", now); !res.Allowed {
		t.Fatal("key a blocked")
	}
	if res := limiter.Allow("b", now); !res.Allowed {
		t.Fatal("key b blocked by key a's count")
	}
}

func TestMemoryLimiter_PrunesStaleKeys(t *testing.T) {
	limiter := NewMemoryLimiter(5, time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		limiter.Allow(fmt.Sprintf("login:10.0.0.%d", i), now)
	}

	limiter.Allow("login:fresh", now.Add(2*time.Minute))

	limiter.mu.Lock()
	size := len(limiter.counters)
	limiter.mu.Unlock()
	if size != 1 {
		t.Fatalf("counters size = %d after window passed, want 1", size)
	}
}
