package account

import (
	"github.com/creditedge/backend/internal/domain/fault"
	"github.com/creditedge/backend/internal/domain/product"
	"github.com/creditedge/backend/internal/money"
	"github.com/shopspring/decimal"
)

// accrualStrategy computes one period's interest charge. original is the
// disbursed principal, outstanding the principal still unpaid entering the
// period, periodicRate the annual rate scaled to the period length.
type accrualStrategy interface {
	PeriodInterest(original, outstanding money.Money, periodicRate decimal.Decimal) money.Money
}

// flatAccrual charges the same interest every period, computed on the
// original principal regardless of what has been repaid.
type flatAccrual struct{}

func (flatAccrual) PeriodInterest(original, _ money.Money, periodicRate decimal.Decimal) money.Money {
	return money.ApplyRate(original, periodicRate)
}

// reducingAccrual charges interest on the outstanding principal only, so the
// interest portion decays as the loan amortizes.
type reducingAccrual struct{}

func (reducingAccrual) PeriodInterest(_, outstanding money.Money, periodicRate decimal.Decimal) money.Money {
	return money.ApplyRate(outstanding, periodicRate)
}

// seasonalAccrual charges once per season on the outstanding principal. The
// seasonal calendar itself is handled by the schedule generator; the charge
// rule is the reducing one applied at season granularity.
type seasonalAccrual struct{}

func (seasonalAccrual) PeriodInterest(_, outstanding money.Money, periodicRate decimal.Decimal) money.Money {
	return money.ApplyRate(outstanding, periodicRate)
}

func strategyFor(method string) (accrualStrategy, error) {
	switch method {
	case product.MethodFlat:
		return flatAccrual{}, nil
	case product.MethodReducingBalance:
		return reducingAccrual{}, nil
	case product.MethodSeasonal:
		return seasonalAccrual{}, nil
	default:
		return nil, fault.Invalid("interest_method", "unknown method")
	}
}

// periodsPerYear maps a repayment frequency to its rate-scaling divisor.
// lump_sum has no periodic divisor; the generator scales by the whole term.
func periodsPerYear(frequency string) (int64, error) {
	switch frequency {
	case product.FrequencyMonthly:
		return 12, nil
	case product.FrequencyWeekly:
		return 52, nil
	case product.FrequencyDaily:
		return 365, nil
	case product.FrequencySeasonal:
		return seasonsPerYear, nil
	case product.FrequencyLumpSum:
		return 0, nil
	default:
		return 0, fault.Invalid("repayment_frequency", "unknown frequency")
	}
}
