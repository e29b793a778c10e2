package account

import "time"

const hoursPerDay = 24

// RefreshOverdue recomputes the derived overdue overlay for one installment
// as of now. daysOverdue is never trusted from storage; it is recalculated
// on every read. paid is monotonic and never regresses; daysOverdue resets
// to zero only once the installment is fully paid.
func RefreshOverdue(inst *Installment, now time.Time) {
	if inst.Status == InstallmentPaid || inst.Settled() {
		inst.Status = InstallmentPaid
		inst.DaysOverdue = 0
		return
	}
	days := wholeDaysPast(inst.DueDate, now)
	if days > 0 {
		inst.Status = InstallmentOverdue
		inst.DaysOverdue = days
		return
	}
	inst.DaysOverdue = 0
	if inst.PaidMinor > 0 {
		inst.Status = InstallmentPartial
	} else {
		inst.Status = InstallmentPending
	}
}

// RefreshScheduleOverdue applies RefreshOverdue across a schedule in place.
func RefreshScheduleOverdue(installments []Installment, now time.Time) {
	for i := range installments {
		RefreshOverdue(&installments[i], now)
	}
}

// Aggregates rolls up the live totals for an account from its schedule.
type Aggregates struct {
	OutstandingMinor        int64
	TotalDueMinor           int64
	TotalPaidMinor          int64
	TotalInterestPaidMinor  int64
	TotalPrincipalPaidMinor int64
	TotalFeePaidMinor       int64
	OverdueCount            int32
	AllPaid                 bool
}

func Aggregate(installments []Installment, now time.Time) Aggregates {
	agg := Aggregates{AllPaid: true}
	for i := range installments {
		inst := installments[i]
		agg.TotalDueMinor += inst.TotalDueMinor()
		agg.OutstandingMinor += inst.OutstandingMinor()
		agg.TotalPaidMinor += inst.PaidMinor
		agg.TotalInterestPaidMinor += inst.InterestPaidMinor
		agg.TotalPrincipalPaidMinor += inst.PrincipalPaidMinor
		agg.TotalFeePaidMinor += inst.FeePaidMinor
		if !inst.Settled() {
			agg.AllPaid = false
			if wholeDaysPast(inst.DueDate, now) > 0 {
				agg.OverdueCount++
			}
		}
	}
	return agg
}

func wholeDaysPast(due, now time.Time) int32 {
	diff := now.Sub(due)
	if diff <= 0 {
		return 0
	}
	return int32(diff / (hoursPerDay * time.Hour))
}
