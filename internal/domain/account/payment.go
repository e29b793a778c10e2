package account

import (
	"time"

	"github.com/creditedge/backend/internal/domain/fault"
)

// OverpaymentPolicy decides what happens to a payment exceeding the total
// outstanding balance of the account.
type OverpaymentPolicy string

const (
	// OverpayReject refuses the whole payment.
	OverpayReject OverpaymentPolicy = "reject"
	// OverpayCredit applies the outstanding part and parks the excess on the
	// account's credit balance.
	OverpayCredit OverpaymentPolicy = "credit"
)

func ParseOverpaymentPolicy(raw string) (OverpaymentPolicy, error) {
	switch OverpaymentPolicy(raw) {
	case OverpayReject, OverpayCredit:
		return OverpaymentPolicy(raw), nil
	case "":
		return OverpayReject, nil
	default:
		return "", fault.Invalid("overpayment_policy", "must be reject or credit")
	}
}

// PaymentResult reports how a payment was absorbed across the schedule.
type PaymentResult struct {
	AppliedMinor   int64
	FeeMinor       int64
	InterestMinor  int64
	PrincipalMinor int64
	ExcessMinor    int64
	Touched        []int
	Closed         bool
}

// applyWaterfall allocates amount across installments oldest-first, inside
// each installment late fee first, then interest, then principal. It mutates
// the account aggregates and the touched installments in place; the caller
// persists both atomically. No partial mutation escapes on error because all
// validation happens before the first write.
func applyWaterfall(a *Account, installments []Installment, amountMinor int64, paidDate time.Time, policy OverpaymentPolicy) (*PaymentResult, error) {
	if amountMinor <= 0 {
		return nil, fault.Invalid("paid_amount_minor", "must be positive")
	}
	switch a.Status {
	case StatusActive:
	case StatusClosed:
		return nil, fault.Conflict("account_closed")
	default:
		return nil, fault.Conflict("account_not_active")
	}

	var totalOutstanding int64
	for i := range installments {
		totalOutstanding += installments[i].OutstandingMinor()
	}

	remaining := amountMinor
	excess := int64(0)
	if remaining > totalOutstanding {
		if policy == OverpayReject {
			return nil, fault.Conflict("overpayment_rejected")
		}
		excess = remaining - totalOutstanding
		remaining = totalOutstanding
	}

	res := &PaymentResult{ExcessMinor: excess}
	for i := range installments {
		if remaining <= 0 {
			break
		}
		inst := &installments[i]
		if inst.Settled() {
			continue
		}

		fee := take(&remaining, inst.LateFeeMinor-inst.FeePaidMinor)
		interest := take(&remaining, inst.InterestDueMinor-inst.InterestPaidMinor)
		principal := take(&remaining, inst.PrincipalDueMinor-inst.PrincipalPaidMinor)
		absorbed := fee + interest + principal
		if absorbed == 0 {
			continue
		}

		inst.FeePaidMinor += fee
		inst.InterestPaidMinor += interest
		inst.PrincipalPaidMinor += principal
		inst.PaidMinor += absorbed
		if inst.Settled() {
			inst.Status = InstallmentPaid
			inst.DaysOverdue = 0
			pd := paidDate
			inst.PaidDate = &pd
		} else {
			inst.Status = InstallmentPartial
		}

		res.FeeMinor += fee
		res.InterestMinor += interest
		res.PrincipalMinor += principal
		res.AppliedMinor += absorbed
		res.Touched = append(res.Touched, i)
	}

	a.OutstandingMinor -= res.AppliedMinor
	if a.OutstandingMinor < 0 {
		a.OutstandingMinor = 0
	}
	a.TotalPaidMinor += res.AppliedMinor
	a.TotalFeePaidMinor += res.FeeMinor
	a.TotalInterestPaidMinor += res.InterestMinor
	a.TotalPrincipalPaidMinor += res.PrincipalMinor
	a.CreditBalanceMinor += res.ExcessMinor

	allPaid := true
	for i := range installments {
		if !installments[i].Settled() {
			allPaid = false
			break
		}
	}
	if allPaid && a.OutstandingMinor == 0 {
		a.Status = StatusClosed
		res.Closed = true
	}

	return res, nil
}

// take consumes up to want from the remaining budget and returns the amount
// actually taken.
func take(remaining *int64, want int64) int64 {
	if want <= 0 || *remaining <= 0 {
		return 0
	}
	got := want
	if got > *remaining {
		got = *remaining
	}
	*remaining -= got
	return got
}
