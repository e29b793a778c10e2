package account

import (
	"context"
	"time"
)

// Loan account status.
const (
	StatusActive     = "active"
	StatusClosed     = "closed"
	StatusDefaulted  = "defaulted"
	StatusWrittenOff = "written_off"
)

// Installment status. pending/partial/paid advance monotonically once money
// is applied; overdue is an overlay derived from the calendar.
const (
	InstallmentPending = "pending"
	InstallmentPartial = "partial"
	InstallmentPaid    = "paid"
	InstallmentOverdue = "overdue"
)

type Account struct {
	ID                      string    `json:"id"`
	TenantID                string    `json:"tenant_id"`
	ApplicationID           string    `json:"application_id"`
	ClientID                string    `json:"client_id"`
	ProductID               string    `json:"product_id"`
	PrincipalMinor          int64     `json:"principal_minor"`
	CurrencyCode            string    `json:"currency_code"`
	Term                    int32     `json:"term"`
	InterestRateBPS         int32     `json:"interest_rate_bps"`
	InterestMethod          string    `json:"interest_method"`
	RepaymentFrequency      string    `json:"repayment_frequency"`
	GracePeriodDays         int32     `json:"grace_period_days"`
	DisbursementDate        time.Time `json:"disbursement_date"`
	MaturityDate            time.Time `json:"maturity_date"`
	OutstandingMinor        int64     `json:"outstanding_minor"`
	TotalPaidMinor          int64     `json:"total_paid_minor"`
	TotalInterestPaidMinor  int64     `json:"total_interest_paid_minor"`
	TotalPrincipalPaidMinor int64     `json:"total_principal_paid_minor"`
	TotalFeePaidMinor       int64     `json:"total_fee_paid_minor"`
	CreditBalanceMinor      int64     `json:"credit_balance_minor"`
	Status                  string    `json:"status"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// Installment is one scheduled repayment obligation. Number is 1-based and
// defines the order payments are applied in.
type Installment struct {
	ID                 string     `json:"id"`
	AccountID          string     `json:"account_id"`
	Number             int32      `json:"installment_number"`
	DueDate            time.Time  `json:"due_date"`
	PrincipalDueMinor  int64      `json:"principal_due_minor"`
	InterestDueMinor   int64      `json:"interest_due_minor"`
	LateFeeMinor       int64      `json:"late_fee_minor"`
	PaidMinor          int64      `json:"paid_minor"`
	FeePaidMinor       int64      `json:"fee_paid_minor"`
	InterestPaidMinor  int64      `json:"interest_paid_minor"`
	PrincipalPaidMinor int64      `json:"principal_paid_minor"`
	PaidDate           *time.Time `json:"paid_date,omitempty"`
	Status             string     `json:"status"`
	DaysOverdue        int32      `json:"days_overdue"`
}

// TotalDueMinor is principal + interest + any assessed late fee.
func (i *Installment) TotalDueMinor() int64 {
	return i.PrincipalDueMinor + i.InterestDueMinor + i.LateFeeMinor
}

// OutstandingMinor is what remains unpaid on this installment.
func (i *Installment) OutstandingMinor() int64 {
	out := i.TotalDueMinor() - i.PaidMinor
	if out < 0 {
		return 0
	}
	return out
}

func (i *Installment) Settled() bool {
	return i.PaidMinor >= i.TotalDueMinor()
}

type ListFilter struct {
	TenantID string
	ClientID string
	Status   string
	Limit    int32
	Offset   int32
}

type Statistics struct {
	TenantID            string `json:"tenant_id"`
	TotalApplications   int64  `json:"total_applications"`
	ActiveLoans         int64  `json:"active_loans"`
	PendingPayments     int64  `json:"pending_payments"`
	OverduePayments     int64  `json:"overdue_payments"`
	TotalPortfolioMinor int64  `json:"total_loan_portfolio_minor"`
}

type Repository interface {
	CreateWithSchedule(ctx context.Context, a *Account, installments []Installment) (*Account, error)
	GetByID(ctx context.Context, tenantID, id string) (*Account, error)
	GetByApplicationID(ctx context.Context, tenantID, applicationID string) (*Account, error)
	GetByInstallmentID(ctx context.Context, tenantID, installmentID string) (*Account, error)
	List(ctx context.Context, f ListFilter) ([]Account, error)
	ListInstallments(ctx context.Context, accountID string) ([]Installment, error)
	CountInstallments(ctx context.Context, accountID string) (int64, error)
	SaveSchedule(ctx context.Context, accountID string, installments []Installment) error
	ApplyPayment(ctx context.Context, a *Account, touched []Installment, ev PaymentEvent) error
	Statistics(ctx context.Context, tenantID string, asOf time.Time) (*Statistics, error)
	AssessLateFee(ctx context.Context, installmentID string, lateFeeMinor int64) error
	ListOverdueInstallments(ctx context.Context, asOf time.Time, limit int32) ([]Installment, error)
}

// PaymentEvent is the row the realtime notifier and the ledger worker both
// fan out from; it is written in the same transaction as the payment.
type PaymentEvent struct {
	ID             int64
	AccountID      string
	TenantID       string
	AmountMinor    int64
	InterestMinor  int64
	PrincipalMinor int64
	FeeMinor       int64
	CurrencyCode   string
	PaidDate       time.Time
	RecordedAt     time.Time
}
