package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creditedge/backend/internal/domain/account"
	"github.com/creditedge/backend/internal/domain/fault"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, tenant_id, application_id, client_id, product_id, principal_minor, currency_code,
       term, interest_rate_bps, interest_method, repayment_frequency, grace_period_days,
       disbursement_date, maturity_date, outstanding_minor, total_paid_minor,
       total_interest_paid_minor, total_principal_paid_minor, total_fee_paid_minor,
       credit_balance_minor, status, created_at, updated_at`

const installmentColumns = `id, account_id, installment_number, due_date, principal_due_minor, interest_due_minor,
       late_fee_minor, paid_minor, fee_paid_minor, interest_paid_minor, principal_paid_minor,
       paid_date, status, days_overdue`

func scanAccount(row pgx.Row) (*account.Account, error) {
	out := &account.Account{}
	err := row.Scan(
		&out.ID, &out.TenantID, &out.ApplicationID, &out.ClientID, &out.ProductID, &out.PrincipalMinor, &out.CurrencyCode,
		&out.Term, &out.InterestRateBPS, &out.InterestMethod, &out.RepaymentFrequency, &out.GracePeriodDays,
		&out.DisbursementDate, &out.MaturityDate, &out.OutstandingMinor, &out.TotalPaidMinor,
		&out.TotalInterestPaidMinor, &out.TotalPrincipalPaidMinor, &out.TotalFeePaidMinor,
		&out.CreditBalanceMinor, &out.Status, &out.CreatedAt, &out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanInstallmentRow(row pgx.Rows, item *account.Installment) error {
	return row.Scan(
		&item.ID, &item.AccountID, &item.Number, &item.DueDate, &item.PrincipalDueMinor, &item.InterestDueMinor,
		&item.LateFeeMinor, &item.PaidMinor, &item.FeePaidMinor, &item.InterestPaidMinor, &item.PrincipalPaidMinor,
		&item.PaidDate, &item.Status, &item.DaysOverdue,
	)
}

// CreateWithSchedule persists the account and its entire installment sequence
// in one transaction so a half-written schedule can never be observed.
func (r *AccountRepository) CreateWithSchedule(ctx context.Context, a *account.Account, installments []account.Installment) (*account.Account, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `
INSERT INTO loan_accounts (
  tenant_id, application_id, client_id, product_id, principal_minor, currency_code,
  term, interest_rate_bps, interest_method, repayment_frequency, grace_period_days,
  disbursement_date, maturity_date, outstanding_minor, status
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
RETURNING ` + accountColumns
	created, err := scanAccount(tx.QueryRow(ctx, q,
		a.TenantID, a.ApplicationID, a.ClientID, a.ProductID, a.PrincipalMinor, a.CurrencyCode,
		a.Term, a.InterestRateBPS, a.InterestMethod, a.RepaymentFrequency, a.GracePeriodDays,
		a.DisbursementDate, a.MaturityDate, a.OutstandingMinor, a.Status,
	))
	if err != nil {
		return nil, err
	}

	if err := insertInstallments(ctx, tx, created.ID, installments); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func insertInstallments(ctx context.Context, tx pgx.Tx, accountID string, installments []account.Installment) error {
	q := `
INSERT INTO installments (
  account_id, installment_number, due_date, principal_due_minor, interest_due_minor, status
) VALUES ($1,$2,$3,$4,$5,$6)
`
	for i := range installments {
		inst := installments[i]
		if _, err := tx.Exec(ctx, q, accountID, inst.Number, inst.DueDate, inst.PrincipalDueMinor, inst.InterestDueMinor, inst.Status); err != nil {
			return err
		}
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, tenantID, id string) (*account.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM loan_accounts WHERE tenant_id = $1 AND id = $2`
	return scanAccount(r.pool.QueryRow(ctx, q, tenantID, id))
}

func (r *AccountRepository) GetByApplicationID(ctx context.Context, tenantID, applicationID string) (*account.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM loan_accounts WHERE tenant_id = $1 AND application_id = $2`
	return scanAccount(r.pool.QueryRow(ctx, q, tenantID, applicationID))
}

func (r *AccountRepository) GetByInstallmentID(ctx context.Context, tenantID, installmentID string) (*account.Account, error) {
	q := `
SELECT ` + accountColumns + `
FROM loan_accounts
WHERE tenant_id = $1 AND id = (SELECT account_id FROM installments WHERE id = $2)
`
	return scanAccount(r.pool.QueryRow(ctx, q, tenantID, installmentID))
}

func (r *AccountRepository) List(ctx context.Context, f account.ListFilter) ([]account.Account, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + accountColumns + ` FROM loan_accounts WHERE tenant_id = $1`)

	args := []any{f.TenantID}
	argPos := 2
	if strings.TrimSpace(f.ClientID) != "" {
		builder.WriteString(" AND client_id = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.ClientID)
		argPos++
	}
	if strings.TrimSpace(f.Status) != "" {
		builder.WriteString(" AND status = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Status)
		argPos++
	}
	builder.WriteString(" ORDER BY created_at DESC")
	builder.WriteString(" LIMIT $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Limit)
	argPos++
	builder.WriteString(" OFFSET $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Offset)

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]account.Account, 0)
	for rows.Next() {
		var item account.Account
		if err := rows.Scan(
			&item.ID, &item.TenantID, &item.ApplicationID, &item.ClientID, &item.ProductID, &item.PrincipalMinor, &item.CurrencyCode,
			&item.Term, &item.InterestRateBPS, &item.InterestMethod, &item.RepaymentFrequency, &item.GracePeriodDays,
			&item.DisbursementDate, &item.MaturityDate, &item.OutstandingMinor, &item.TotalPaidMinor,
			&item.TotalInterestPaidMinor, &item.TotalPrincipalPaidMinor, &item.TotalFeePaidMinor,
			&item.CreditBalanceMinor, &item.Status, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AccountRepository) ListInstallments(ctx context.Context, accountID string) ([]account.Installment, error) {
	q := `SELECT ` + installmentColumns + ` FROM installments WHERE account_id = $1 ORDER BY installment_number`
	rows, err := r.pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]account.Installment, 0)
	for rows.Next() {
		var item account.Installment
		if err := scanInstallmentRow(rows, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AccountRepository) CountInstallments(ctx context.Context, accountID string) (int64, error) {
	q := `SELECT COUNT(*)::bigint FROM installments WHERE account_id = $1`
	var n int64
	if err := r.pool.QueryRow(ctx, q, accountID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *AccountRepository) SaveSchedule(ctx context.Context, accountID string, installments []account.Installment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := insertInstallments(ctx, tx, accountID, installments); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ApplyPayment writes the updated aggregates, the touched installments and
// the payment event atomically.
func (r *AccountRepository) ApplyPayment(ctx context.Context, a *account.Account, touched []account.Installment, ev account.PaymentEvent) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	qAccount := `
UPDATE loan_accounts
SET outstanding_minor = $2, total_paid_minor = $3, total_interest_paid_minor = $4,
    total_principal_paid_minor = $5, total_fee_paid_minor = $6, credit_balance_minor = $7,
    status = $8, updated_at = NOW()
WHERE id = $1
`
	tag, err := tx.Exec(ctx, qAccount,
		a.ID, a.OutstandingMinor, a.TotalPaidMinor, a.TotalInterestPaidMinor,
		a.TotalPrincipalPaidMinor, a.TotalFeePaidMinor, a.CreditBalanceMinor, a.Status,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.ErrNotFound
	}

	qInstallment := `
UPDATE installments
SET paid_minor = $2, fee_paid_minor = $3, interest_paid_minor = $4, principal_paid_minor = $5,
    paid_date = $6, status = $7, days_overdue = $8
WHERE id = $1
`
	for i := range touched {
		inst := touched[i]
		if _, err := tx.Exec(ctx, qInstallment,
			inst.ID, inst.PaidMinor, inst.FeePaidMinor, inst.InterestPaidMinor, inst.PrincipalPaidMinor,
			inst.PaidDate, inst.Status, inst.DaysOverdue,
		); err != nil {
			return err
		}
	}

	qEvent := `
INSERT INTO payment_events (account_id, tenant_id, amount_minor, interest_minor, principal_minor, fee_minor, currency_code, paid_date, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`
	if _, err := tx.Exec(ctx, qEvent,
		ev.AccountID, ev.TenantID, ev.AmountMinor, ev.InterestMinor, ev.PrincipalMinor, ev.FeeMinor,
		ev.CurrencyCode, ev.PaidDate, ev.RecordedAt,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *AccountRepository) Statistics(ctx context.Context, tenantID string, asOf time.Time) (*account.Statistics, error) {
	out := &account.Statistics{TenantID: tenantID}

	qApps := `SELECT COUNT(*)::bigint FROM loan_applications WHERE tenant_id = $1`
	if err := r.pool.QueryRow(ctx, qApps, tenantID).Scan(&out.TotalApplications); err != nil {
		return nil, err
	}

	qAccounts := `
SELECT
  COUNT(*) FILTER (WHERE status = 'active')::bigint AS active_loans,
  COALESCE(SUM(outstanding_minor) FILTER (WHERE status = 'active'), 0)::bigint AS portfolio_minor
FROM loan_accounts
WHERE tenant_id = $1
`
	if err := r.pool.QueryRow(ctx, qAccounts, tenantID).Scan(&out.ActiveLoans, &out.TotalPortfolioMinor); err != nil {
		return nil, err
	}

	qInstallments := `
SELECT
  COUNT(*) FILTER (WHERE i.paid_minor < i.principal_due_minor + i.interest_due_minor + i.late_fee_minor)::bigint AS pending,
  COUNT(*) FILTER (WHERE i.paid_minor < i.principal_due_minor + i.interest_due_minor + i.late_fee_minor AND i.due_date < $2)::bigint AS overdue
FROM installments i
JOIN loan_accounts a ON a.id = i.account_id
WHERE a.tenant_id = $1
`
	if err := r.pool.QueryRow(ctx, qInstallments, tenantID, asOf).Scan(&out.PendingPayments, &out.OverduePayments); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AccountRepository) AssessLateFee(ctx context.Context, installmentID string, lateFeeMinor int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// The fee raises what the client owes, so the account aggregate moves
	// with the installment or the two disagree until the next payment.
	qInstallment := `
UPDATE installments SET late_fee_minor = $2
WHERE id = $1 AND late_fee_minor = 0
RETURNING account_id
`
	var accountID string
	if err := tx.QueryRow(ctx, qInstallment, installmentID, lateFeeMinor).Scan(&accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tx.Commit(ctx)
		}
		return err
	}

	qAccount := `
UPDATE loan_accounts
SET outstanding_minor = outstanding_minor + $2, updated_at = NOW()
WHERE id = $1
`
	if _, err := tx.Exec(ctx, qAccount, accountID, lateFeeMinor); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *AccountRepository) ListOverdueInstallments(ctx context.Context, asOf time.Time, limit int32) ([]account.Installment, error) {
	if limit <= 0 {
		limit = 500
	}
	q := `
SELECT ` + installmentColumns + `
FROM installments
WHERE due_date < $1
  AND paid_minor < principal_due_minor + interest_due_minor + late_fee_minor
ORDER BY due_date
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, asOf, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]account.Installment, 0)
	for rows.Next() {
		var item account.Installment
		if err := scanInstallmentRow(rows, &item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
