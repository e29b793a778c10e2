package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a currency amount in integer minor units (e.g. ngwee, cents).
// Arithmetic that can produce fractions goes through decimal and is rounded
// half-up back to the minor unit, so repeated operations across a schedule
// never accumulate binary floating point drift.
type Money int64

const bpsDenominator = 10000

var (
	zero       = decimal.Zero
	bpsDivisor = decimal.NewFromInt(bpsDenominator)
)

func FromMinor(minor int64) Money {
	return Money(minor)
}

func (m Money) Minor() int64 {
	return int64(m)
}

func (m Money) IsZero() bool {
	return m == 0
}

func (m Money) IsPositive() bool {
	return m > 0
}

func (m Money) Add(o Money) Money {
	return m + o
}

func (m Money) Sub(o Money) Money {
	return m - o
}

// Min returns the smaller of m and o.
func (m Money) Min(o Money) Money {
	if o < m {
		return o
	}
	return m
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(m))
}

// String renders the amount with two decimal places for logs and payloads.
func (m Money) String() string {
	return m.Decimal().Div(decimal.NewFromInt(100)).StringFixed(2)
}

// RoundMinor rounds a decimal amount of minor units half-up to a Money value.
func RoundMinor(d decimal.Decimal) Money {
	return Money(d.Round(0).IntPart())
}

// Rate is an interest rate in basis points (1% == 100 bps), the same wire
// representation the loan book uses everywhere.
type Rate int32

func RateFromBPS(bps int32) Rate {
	return Rate(bps)
}

func (r Rate) BPS() int32 {
	return int32(r)
}

// Fraction returns the rate as a plain decimal fraction (1200 bps -> 0.12).
func (r Rate) Fraction() decimal.Decimal {
	return decimal.NewFromInt(int64(r)).Div(bpsDivisor)
}

// PerPeriod divides an annual rate across the given number of periods per
// year, returning the periodic fraction (1200 bps, 12 periods -> 0.01).
func (r Rate) PerPeriod(periodsPerYear int64) decimal.Decimal {
	if periodsPerYear <= 0 {
		return zero
	}
	return r.Fraction().Div(decimal.NewFromInt(periodsPerYear))
}

// ApplyRate computes m * fraction rounded half-up to the minor unit.
func ApplyRate(m Money, fraction decimal.Decimal) Money {
	return RoundMinor(m.Decimal().Mul(fraction))
}

// Allocate splits m into n shares that sum to m exactly. Every share is the
// floor of the even split; the remainder lands on the final share.
func Allocate(m Money, n int) ([]Money, error) {
	if n <= 0 {
		return nil, fmt.Errorf("allocate: share count must be positive, got %d", n)
	}
	base := int64(m) / int64(n)
	out := make([]Money, n)
	for i := range out {
		out[i] = Money(base)
	}
	out[n-1] = Money(int64(m) - base*int64(n-1))
	return out, nil
}

// Sum adds a slice of amounts.
func Sum(amounts []Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}
