package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAllocateConservesTotal(t *testing.T) {
	cases := []struct {
		total int64
		n     int
	}{
		{1200000, 12},
		{1000001, 3},
		{7, 5},
		{99, 100},
	}
	for _, tc := range cases {
		shares, err := Allocate(FromMinor(tc.total), tc.n)
		if err != nil {
			t.Fatalf("allocate %d/%d: %v", tc.total, tc.n, err)
		}
		if len(shares) != tc.n {
			t.Fatalf("expected %d shares, got %d", tc.n, len(shares))
		}
		if Sum(shares).Minor() != tc.total {
			t.Fatalf("shares of %d across %d sum to %d", tc.total, tc.n, Sum(shares).Minor())
		}
		base := tc.total / int64(tc.n)
		for i, s := range shares[:tc.n-1] {
			if s.Minor() != base {
				t.Fatalf("share %d = %d, want %d", i, s.Minor(), base)
			}
		}
	}
}

func TestAllocateRejectsNonPositiveCount(t *testing.T) {
	if _, err := Allocate(FromMinor(100), 0); err == nil {
		t.Fatalf("expected error for zero share count")
	}
}

func TestApplyRateRoundsHalfUp(t *testing.T) {
	// 0.5 minor units rounds up: 101 * 0.005 = 0.505 -> 1
	got := ApplyRate(FromMinor(101), decimal.NewFromFloat(0.005))
	if got.Minor() != 1 {
		t.Fatalf("expected 1, got %d", got.Minor())
	}
	// 1200000 * 0.01 = 12000 exactly
	got = ApplyRate(FromMinor(1200000), RateFromBPS(1200).PerPeriod(12))
	if got.Minor() != 12000 {
		t.Fatalf("expected 12000, got %d", got.Minor())
	}
}

func TestRatePerPeriod(t *testing.T) {
	monthly := RateFromBPS(1200).PerPeriod(12)
	if !monthly.Equal(decimal.NewFromFloat(0.01)) {
		t.Fatalf("expected 0.01, got %s", monthly)
	}
	if !RateFromBPS(1200).PerPeriod(0).IsZero() {
		t.Fatalf("expected zero fraction for zero periods")
	}
}

func TestStringRendersMajorUnits(t *testing.T) {
	if s := FromMinor(123456).String(); s != "1234.56" {
		t.Fatalf("expected 1234.56, got %s", s)
	}
}
