package account

import (
	"time"

	"github.com/creditedge/backend/internal/domain/fault"
	"github.com/creditedge/backend/internal/domain/product"
	"github.com/creditedge/backend/internal/money"
	"github.com/shopspring/decimal"
)

// Two harvest cycles per calendar year; one season spans six months.
const (
	seasonsPerYear  = 2
	monthsPerSeason = 6
)

var decimalOne = decimal.NewFromInt(1)

// GenerationSpec is everything the generator needs to lay out a schedule.
// Term counts installments under the given frequency (months for lump_sum).
type GenerationSpec struct {
	PrincipalMinor   int64
	Term             int32
	AnnualRateBPS    int32
	InterestMethod   string
	Frequency        string
	DisbursementDate time.Time
	GracePeriodDays  int32
}

// MaturityDate returns the due date of the final installment.
func (s GenerationSpec) MaturityDate() time.Time {
	return s.dueDate(int(s.installmentCount()))
}

func (s GenerationSpec) installmentCount() int32 {
	if s.Frequency == product.FrequencyLumpSum {
		return 1
	}
	return s.Term
}

func (s GenerationSpec) start() time.Time {
	return s.DisbursementDate.AddDate(0, 0, int(s.GracePeriodDays))
}

// dueDate returns the due date of the i-th installment (1-based) counted
// from the schedule start under the frequency's calendar rule.
func (s GenerationSpec) dueDate(i int) time.Time {
	start := s.start()
	switch s.Frequency {
	case product.FrequencyWeekly:
		return start.AddDate(0, 0, 7*i)
	case product.FrequencyDaily:
		return start.AddDate(0, 0, i)
	case product.FrequencySeasonal:
		return start.AddDate(0, monthsPerSeason*i, 0)
	case product.FrequencyLumpSum:
		// Single balloon installment at the end of the whole term.
		return start.AddDate(0, int(s.Term), 0)
	default: // monthly
		return start.AddDate(0, i, 0)
	}
}

// GenerateSchedule produces the ordered installment sequence for a loan.
// Post-condition: principal due across the schedule sums to the principal
// exactly, with any rounding residue on the final installment.
func GenerateSchedule(spec GenerationSpec) ([]Installment, error) {
	if spec.PrincipalMinor <= 0 {
		return nil, fault.Invalid("principal_minor", "must be positive")
	}
	if spec.Term <= 0 {
		return nil, fault.Invalid("term", "must be positive")
	}
	if spec.AnnualRateBPS < 0 {
		return nil, fault.Invalid("interest_rate_bps", "must be non-negative")
	}
	if spec.GracePeriodDays < 0 {
		return nil, fault.Invalid("grace_period_days", "must be non-negative")
	}
	if err := product.CheckMethodFrequency(spec.InterestMethod, spec.Frequency); err != nil {
		return nil, err
	}
	strategy, err := strategyFor(spec.InterestMethod)
	if err != nil {
		return nil, err
	}

	periodicRate, err := periodicRateFor(spec)
	if err != nil {
		return nil, err
	}

	n := int(spec.installmentCount())
	principal := money.FromMinor(spec.PrincipalMinor)

	var installments []Installment
	if spec.InterestMethod == product.MethodReducingBalance && n > 1 {
		installments = annuityInstallments(spec, principal, n, periodicRate)
	} else {
		installments, err = evenInstallments(spec, principal, n, periodicRate, strategy)
		if err != nil {
			return nil, err
		}
	}

	var principalSum int64
	for i := range installments {
		principalSum += installments[i].PrincipalDueMinor
		if installments[i].PrincipalDueMinor < 0 || installments[i].InterestDueMinor < 0 {
			return nil, fault.Arithmetic("negative component on installment %d", installments[i].Number)
		}
	}
	if principalSum != spec.PrincipalMinor {
		return nil, fault.Arithmetic("principal apportionment %d != %d", principalSum, spec.PrincipalMinor)
	}
	return installments, nil
}

// annuityInstallments lays out a constant-payment reducing balance schedule.
// Interest is charged on the running outstanding principal; the final
// installment clears whatever principal remains after rounding.
func annuityInstallments(spec GenerationSpec, principal money.Money, n int, rate decimal.Decimal) []Installment {
	payment := annuityPayment(principal.Decimal(), rate, n)
	outstanding := principal

	out := make([]Installment, 0, n)
	for i := 1; i <= n; i++ {
		interest := money.ApplyRate(outstanding, rate)
		var principalDue money.Money
		if i == n {
			principalDue = outstanding
		} else {
			principalDue = money.RoundMinor(payment).Sub(interest)
			if principalDue.Minor() < 0 {
				principalDue = 0
			}
			principalDue = principalDue.Min(outstanding)
		}
		outstanding = outstanding.Sub(principalDue)

		out = append(out, Installment{
			Number:            int32(i),
			DueDate:           spec.dueDate(i),
			PrincipalDueMinor: principalDue.Minor(),
			InterestDueMinor:  interest.Minor(),
			Status:            InstallmentPending,
		})
	}
	return out
}

// evenInstallments divides principal evenly (remainder on the final
// installment) and lets the accrual strategy price each period.
func evenInstallments(spec GenerationSpec, principal money.Money, n int, rate decimal.Decimal, strategy accrualStrategy) ([]Installment, error) {
	shares, err := money.Allocate(principal, n)
	if err != nil {
		return nil, err
	}

	outstanding := principal
	out := make([]Installment, 0, n)
	for i := 1; i <= n; i++ {
		interest := strategy.PeriodInterest(principal, outstanding, rate)
		principalDue := shares[i-1]
		outstanding = outstanding.Sub(principalDue)

		out = append(out, Installment{
			Number:            int32(i),
			DueDate:           spec.dueDate(i),
			PrincipalDueMinor: principalDue.Minor(),
			InterestDueMinor:  interest.Minor(),
			Status:            InstallmentPending,
		})
	}
	return out, nil
}

// annuityPayment is the standard amortization formula
// A = P * r * (1+r)^n / ((1+r)^n - 1), in decimal.
func annuityPayment(principal, rate decimal.Decimal, n int) decimal.Decimal {
	if rate.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(n)))
	}
	compounded := decimalOne.Add(rate).Pow(decimal.NewFromInt(int64(n)))
	return principal.Mul(rate).Mul(compounded).Div(compounded.Sub(decimalOne))
}

func periodicRateFor(spec GenerationSpec) (decimal.Decimal, error) {
	annual := money.RateFromBPS(spec.AnnualRateBPS)
	if spec.Frequency == product.FrequencyLumpSum {
		// The whole term's interest in one charge, term counted in months.
		return annual.Fraction().
			Mul(decimal.NewFromInt(int64(spec.Term))).
			Div(decimal.NewFromInt(12)), nil
	}
	ppy, err := periodsPerYear(spec.Frequency)
	if err != nil {
		return decimal.Zero, err
	}
	return annual.PerPeriod(ppy), nil
}
