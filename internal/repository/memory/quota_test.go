package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

var testPolicy = repository.QuotaPolicy{DailyLimit: 3, Cooldown: 3 * time.Second}

func TestQuotaStore_DailyLimit(t *testing.T) {
	s := NewQuotaStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		d, err := s.Admit(ctx, "u1", "2026-03-01", now.Add(time.Duration(i)*time.Minute), testPolicy)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !d.Allowed {
			t.Fatalf("admit %d: expected allowed, got %+v", i, d)
		}
		if d.Remaining != 2-i {
			t.Errorf("admit %d: remaining = %d, want %d", i, d.Remaining, 2-i)
		}
	}

	d, _ := s.Admit(ctx, "u1", "2026-03-01", now.Add(time.Hour), testPolicy)
	if d.Allowed {
		t.Fatal("expected rejection at the daily limit")
	}
	if d.Reason != domain.ReasonDailyLimitExceeded {
		t.Errorf("reason = %q, want %q", d.Reason, domain.ReasonDailyLimitExceeded)
	}
	if d.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", d.Remaining)
	}

	usage, _ := s.Usage(ctx, "u1", "2026-03-01")
	if usage.Used != 3 {
		t.Errorf("used = %d, want 3 (rejections must not consume)", usage.Used)
	}
}

func TestQuotaStore_Cooldown(t *testing.T) {
	s := NewQuotaStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if d, _ := s.Admit(ctx, "u1", "2026-03-01", now, testPolicy); !d.Allowed {
		t.Fatal("first admit should pass")
	}

	d, _ := s.Admit(ctx, "u1", "2026-03-01", now.Add(500*time.Millisecond), testPolicy)
	if d.Allowed {
		t.Fatal("expected cooldown rejection")
	}
	if d.Reason != domain.ReasonCooldownActive {
		t.Errorf("reason = %q", d.Reason)
	}
	if d.RetryAfterSeconds != 3 {
		t.Errorf("retryAfter = %d, want 3 (2.5s rounded up)", d.RetryAfterSeconds)
	}
	if d.Remaining != 2 {
		t.Errorf("remaining = %d, want 2", d.Remaining)
	}

	if d, _ := s.Admit(ctx, "u1", "2026-03-01", now.Add(3*time.Second), testPolicy); !d.Allowed {
		t.Errorf("admit after cooldown should pass, got %+v", d)
	}
}

func TestQuotaStore_NewDayResets(t *testing.T) {
	s := NewQuotaStore()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)

	for i := 0; i < 3; i++ {
		s.Admit(ctx, "u1", "2026-03-01", now.Add(time.Duration(-i)*time.Minute), testPolicy)
	}

	// One second later it is a new day; neither the cap nor the cooldown carry over.
	d, _ := s.Admit(ctx, "u1", "2026-03-02", now.Add(time.Second), testPolicy)
	if !d.Allowed {
		t.Fatalf("expected allowed on a new day, got %+v", d)
	}
	if d.Remaining != 2 {
		t.Errorf("remaining = %d, want 2", d.Remaining)
	}
}

func TestQuotaStore_ConcurrentAdmitNeverExceedsLimit(t *testing.T) {
	s := NewQuotaStore()
	policy := repository.QuotaPolicy{DailyLimit: 10}
	now := time.Now()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, _ := s.Admit(context.Background(), "u1", "day", now, policy)
			if d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Errorf("allowed = %d, want 10", allowed)
	}
}

func TestQuotaStore_Sweep(t *testing.T) {
	s := NewQuotaStore()
	ctx := context.Background()
	s.Admit(ctx, "old", "2026-03-01", time.Now(), testPolicy)
	s.Admit(ctx, "new", "2026-03-02", time.Now(), testPolicy)

	if n := s.sweep("2026-03-02"); n != 1 {
		t.Errorf("sweep removed %d, want 1", n)
	}
	if u, _ := s.Usage(ctx, "new", "2026-03-02"); u.Used != 1 {
		t.Errorf("current-day record should survive, got %+v", u)
	}
}
