package vps

import (
	"testing"
	"time"

	"github.com/fxedge-labs/ea-portal/internal/models"
)

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		end  time.Time
		want int
	}{
		{"three days ahead", now.AddDate(0, 0, 3), 3},
		{"same instant", now, 0},
		{"one day ago", now.AddDate(0, 0, -1), -1},
		{"half day ahead", now.Add(12 * time.Hour), 0},
		{"just past", now.Add(-time.Minute), -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysRemaining(tc.end, now); got != tc.want {
				t.Fatalf("DaysRemaining(%s) = %d, want %d", tc.end, got, tc.want)
			}
		})
	}
}

func TestDaysRemaining_StrictlyDecreasing(t *testing.T) {
	end := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	now := end.AddDate(0, 0, -5)

	prev := DaysRemaining(end, now)
	for i := 1; i <= 10; i++ {
		got := DaysRemaining(end, now.AddDate(0, 0, i))
		if got >= prev {
			t.Fatalf("expected strictly decreasing, got %d after %d", got, prev)
		}
		prev = got
	}

	if DaysRemaining(end, end) != 0 {
		t.Fatalf("expected 0 at now == end")
	}
	if DaysRemaining(end, end.Add(time.Second)) >= 0 {
		t.Fatalf("expected negative immediately after end")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{-10, ClassExpired},
		{-1, ClassExpired},
		{0, ClassExpiresToday},
		{1, ClassExpiringSoon},
		{7, ClassExpiringSoon},
		{8, ClassActive},
		{90, ClassActive},
	}
	for _, tc := range cases {
		if got := Classify(tc.days); got != tc.want {
			t.Fatalf("Classify(%d) = %q, want %q", tc.days, got, tc.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(-1); got != "expired 1 days ago" {
		t.Fatalf("Describe(-1) = %q", got)
	}
	if got := Describe(0); got != "expires today" {
		t.Fatalf("Describe(0) = %q", got)
	}
	if got := Describe(3); got != "3 days left" {
		t.Fatalf("Describe(3) = %q", got)
	}
}

// A record held fixed must change its displayed status as the clock moves,
// while the stored label stays untouched.
func TestEffectiveStatus_ClockOnly(t *testing.T) {
	end := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	stored := models.VPSStatusActive

	before := end.AddDate(0, 0, -2)
	after := end.AddDate(0, 0, 2)

	if got := EffectiveStatus(stored, end, before); got != models.VPSStatusActive {
		t.Fatalf("expected active before end, got %q", got)
	}
	if got := EffectiveStatus(stored, end, after); got != ClassExpired {
		t.Fatalf("expected expired after end, got %q", got)
	}
	// Stored label is an input, not a field we mutate; it must read the
	// same regardless of evaluation time.
	if stored != models.VPSStatusActive {
		t.Fatalf("stored status changed")
	}
}

func TestEffectiveStatus_NonActivePassesThrough(t *testing.T) {
	end := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	after := end.AddDate(0, 0, 30)

	for _, stored := range []string{models.VPSStatusSuspended, models.VPSStatusCancelled} {
		if got := EffectiveStatus(stored, end, after); got != stored {
			t.Fatalf("expected %q unchanged past end, got %q", stored, got)
		}
	}
}

func TestDaysRemainingThroughClassifyAndDescribe(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	in3 := DaysRemaining(now.AddDate(0, 0, 3), now)
	if in3 != 3 {
		t.Fatalf("expected 3 days, got %d", in3)
	}
	if Classify(in3) != ClassExpiringSoon {
		t.Fatalf("expected expiring soon for 3 days")
	}

	past := DaysRemaining(now.AddDate(0, 0, -1), now)
	if Classify(past) != ClassExpired {
		t.Fatalf("expected expired for yesterday")
	}
	if Describe(past) != "expired 1 days ago" {
		t.Fatalf("expected %q, got %q", "expired 1 days ago", Describe(past))
	}
}
