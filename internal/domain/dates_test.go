package domain_test

import (
	"testing"
	"time"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestAddMonths_EveryPeriodicity(t *testing.T) {
	start := "2024-01-16"
	tests := []struct {
		months int
		want   string
	}{
		{1, "2024-02-16"},
		{2, "2024-03-16"},
		{3, "2024-04-16"},
		{6, "2024-07-16"},
		{12, "2025-01-16"},
		{24, "2026-01-16"},
	}
	for _, tt := range tests {
		got := domain.AddMonths(date(t, start), tt.months)
		if want := date(t, tt.want); !got.Equal(want) {
			t.Errorf("AddMonths(%s, %d) = %s, want %s", start, tt.months, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestAddMonths_ClampsToEndOfMonth(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		months int
		want   string
	}{
		{"jan 31 plus one month", "2024-01-31", 1, "2024-02-29"},
		{"jan 31 plus one month non leap", "2023-01-31", 1, "2023-02-28"},
		{"mar 31 into april", "2024-03-31", 1, "2024-04-30"},
		{"aug 31 plus six months", "2023-08-31", 6, "2024-02-29"},
		{"oct 31 plus one month", "2024-10-31", 1, "2024-11-30"},
		{"clamped day stays clamped", "2024-02-29", 12, "2025-02-28"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.AddMonths(date(t, tt.start), tt.months)
			if want := date(t, tt.want); !got.Equal(want) {
				t.Errorf("AddMonths(%s, %d) = %s, want %s", tt.start, tt.months, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestAddMonths_CrossesYearBoundary(t *testing.T) {
	got := domain.AddMonths(date(t, "2024-11-15"), 3)
	if want := date(t, "2025-02-15"); !got.Equal(want) {
		t.Errorf("AddMonths = %s, want %s", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestDay_TruncatesToUTCMidnight(t *testing.T) {
	in := time.Date(2024, 1, 15, 23, 59, 58, 0, time.UTC)
	got := domain.Day(in)
	if want := date(t, "2024-01-15"); !got.Equal(want) {
		t.Errorf("Day(%s) = %s, want %s", in, got, want)
	}
}
