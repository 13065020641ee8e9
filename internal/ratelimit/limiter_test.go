package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_UsesDifferentLimitsByScopeAndBucket(t *testing.T) {
	t.Parallel()

	limiter := New(Config{
		Window:   time.Minute,
		ReadIP:   2,
		ReadKey:  4,
		WriteIP:  1,
		WriteKey: 3,
	})
	now := time.Unix(1_700_000_000, 0).UTC()

	// Read/IP allows 2 then blocks.
	if r := limiter.Take(now, ScopeRead, BucketIP, "1.1.1.1"); !r.Allowed || r.Remaining != 1 {
		t.Fatalf("read ip #1 = %#v", r)
	}
	if r := limiter.Take(now, ScopeRead, BucketIP, "1.1.1.1"); !r.Allowed || r.Remaining != 0 {
		t.Fatalf("read ip #2 = %#v", r)
	}
	if r := limiter.Take(now, ScopeRead, BucketIP, "1.1.1.1"); r.Allowed || r.Remaining != 0 {
		t.Fatalf("read ip #3 = %#v", r)
	}

	// Read/key has higher limit.
	for i := 0; i < 4; i++ {
		r := limiter.Take(now, ScopeRead, BucketKey, "user-a")
		if !r.Allowed {
			t.Fatalf("read key #%d denied: %#v", i+1, r)
		}
	}
	if r := limiter.Take(now, ScopeRead, BucketKey, "user-a"); r.Allowed {
		t.Fatalf("read key #5 should be denied: %#v", r)
	}

	// Write/IP limit 1.
	if r := limiter.Take(now, ScopeWrite, BucketIP, "2.2.2.2"); !r.Allowed {
		t.Fatalf("write ip #1 denied: %#v", r)
	}
	if r := limiter.Take(now, ScopeWrite, BucketIP, "2.2.2.2"); r.Allowed {
		t.Fatalf("write ip #2 should be denied: %#v", r)
	}
}

func TestLimiter_ResetsAfterWindow(t *testing.T) {
	t.Parallel()

	limiter := New(Config{
		Window:   time.Minute,
		ReadIP:   1,
		ReadKey:  1,
		WriteIP:  1,
		WriteKey: 1,
	})
	t0 := time.Unix(1_700_000_000, 0).UTC()

	if r := limiter.Take(t0, ScopeRead, BucketIP, "1.1.1.1"); !r.Allowed {
		t.Fatalf("first request denied: %#v", r)
	}
	if r := limiter.Take(t0.Add(10*time.Second), ScopeRead, BucketIP, "1.1.1.1"); r.Allowed {
		t.Fatalf("second request should be denied: %#v", r)
	}
	if r := limiter.Take(t0.Add(61*time.Second), ScopeRead, BucketIP, "1.1.1.1"); !r.Allowed {
		t.Fatalf("request after reset denied: %#v", r)
	}
}

func TestLimiter_SliceScopeIsSeparateFromReads(t *testing.T) {
	t.Parallel()

	limiter := New(Config{
		Window:  time.Minute,
		ReadIP:  1,
		SliceIP: 3,
	})
	now := time.Unix(1_700_000_000, 0).UTC()

	if r := limiter.Take(now, ScopeRead, BucketIP, "1.1.1.1"); !r.Allowed {
		t.Fatalf("read denied: %#v", r)
	}
	for i := 0; i < 3; i++ {
		if r := limiter.Take(now, ScopeSlice, BucketIP, "1.1.1.1"); !r.Allowed || r.Limit != 3 {
			t.Fatalf("slice #%d = %#v", i+1, r)
		}
	}
	if r := limiter.Take(now, ScopeSlice, BucketIP, "1.1.1.1"); r.Allowed {
		t.Fatalf("slice #4 should be denied: %#v", r)
	}
	if got := limiter.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
}

func TestLimiter_ZeroLimitIsUnlimited(t *testing.T) {
	t.Parallel()

	limiter := New(Config{Window: time.Minute})
	now := time.Unix(1_700_000_000, 0).UTC()
	for i := 0; i < 50; i++ {
		if r := limiter.Take(now, ScopeWrite, BucketKey, "jim"); !r.Allowed {
			t.Fatalf("request #%d denied: %#v", i+1, r)
		}
	}
}
