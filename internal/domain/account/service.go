package account

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	applicationdomain "github.com/creditedge/backend/internal/domain/application"
	"github.com/creditedge/backend/internal/domain/fault"
	productdomain "github.com/creditedge/backend/internal/domain/product"
	"github.com/creditedge/backend/internal/ledger"
	"github.com/creditedge/backend/internal/money"
)

const outboxTopicPostJournal = "post_journal"

type ApplicationGateway interface {
	Get(ctx context.Context, tenantID, id string) (*applicationdomain.Entity, error)
	MarkDisbursed(ctx context.Context, tenantID, id, accountID string) (*applicationdomain.Entity, error)
}

type ProductGateway interface {
	GetByID(ctx context.Context, tenantID, id string) (*productdomain.Entity, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, topic string, payload []byte) error
}

type DisburseInput struct {
	ApplicationID    string
	DisbursementDate time.Time
}

type PaymentInput struct {
	InstallmentID   string
	PaidAmountMinor int64
	PaidDate        time.Time
}

type Service struct {
	repo         Repository
	applications ApplicationGateway
	products     ProductGateway
	outbox       OutboxRepository
	policy       OverpaymentPolicy
	lateFeeBPS   int32
	currency     string
	now          func() time.Time

	// locks serializes schedule generation and payment application per
	// account; cross-account operations run in parallel.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewService(repo Repository, applications ApplicationGateway, products ProductGateway, outbox OutboxRepository, policy OverpaymentPolicy, lateFeeBPS int32, currency string) *Service {
	if currency == "" {
		currency = "ZMW"
	}
	return &Service{
		repo:         repo,
		applications: applications,
		products:     products,
		outbox:       outbox,
		policy:       policy,
		lateFeeBPS:   lateFeeBPS,
		currency:     currency,
		now:          func() time.Time { return time.Now().UTC() },
		locks:        map[string]*sync.Mutex{},
	}
}

func (s *Service) accountLock(accountID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if l, ok := s.locks[accountID]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[accountID] = l
	return l
}

// Disburse releases funds for an approved application: it creates the loan
// account, generates its full payment schedule in the same transaction, marks
// the application disbursed and queues the disbursement journal entry.
func (s *Service) Disburse(ctx context.Context, tenantID string, in DisburseInput) (*Account, []Installment, error) {
	if strings.TrimSpace(in.ApplicationID) == "" {
		return nil, nil, fault.Invalid("application_id", "required")
	}
	if in.DisbursementDate.IsZero() {
		return nil, nil, fault.Invalid("disbursement_date", "required")
	}

	app, err := s.applications.Get(ctx, tenantID, in.ApplicationID)
	if err != nil {
		return nil, nil, err
	}
	if app.Status != applicationdomain.StatusApproved {
		return nil, nil, fault.Conflict("application_not_approved")
	}
	if existing, err := s.repo.GetByApplicationID(ctx, tenantID, in.ApplicationID); err == nil && existing != nil {
		return nil, nil, fault.Conflict("application_already_disbursed")
	}

	p, err := s.products.GetByID(ctx, tenantID, app.ProductID)
	if err != nil {
		return nil, nil, fault.Invalid("product_id", "unknown product")
	}

	spec := GenerationSpec{
		PrincipalMinor:   app.ApprovedAmountMinor,
		Term:             app.ApprovedTerm,
		AnnualRateBPS:    app.ApprovedRateBPS,
		InterestMethod:   p.InterestMethod,
		Frequency:        p.RepaymentFrequency,
		DisbursementDate: in.DisbursementDate,
		GracePeriodDays:  p.GracePeriodDays,
	}
	installments, err := GenerateSchedule(spec)
	if err != nil {
		return nil, nil, err
	}

	agg := Aggregate(installments, s.now())
	acct := &Account{
		TenantID:           tenantID,
		ApplicationID:      app.ID,
		ClientID:           app.ClientID,
		ProductID:          app.ProductID,
		PrincipalMinor:     app.ApprovedAmountMinor,
		CurrencyCode:       s.currency,
		Term:               app.ApprovedTerm,
		InterestRateBPS:    app.ApprovedRateBPS,
		InterestMethod:     p.InterestMethod,
		RepaymentFrequency: p.RepaymentFrequency,
		GracePeriodDays:    p.GracePeriodDays,
		DisbursementDate:   in.DisbursementDate,
		MaturityDate:       spec.MaturityDate(),
		OutstandingMinor:   agg.TotalDueMinor,
		Status:             StatusActive,
	}

	created, err := s.repo.CreateWithSchedule(ctx, acct, installments)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.applications.MarkDisbursed(ctx, tenantID, app.ID, created.ID); err != nil {
		return nil, nil, err
	}

	if err := s.enqueueDisbursementJournal(ctx, created, p); err != nil {
		return nil, nil, err
	}

	stored, err := s.repo.ListInstallments(ctx, created.ID)
	if err != nil {
		return nil, nil, err
	}
	return created, stored, nil
}

// GenerateSchedule creates the schedule for an account that has none yet.
// An account whose schedule already exists is a conflict; installments with
// recorded payments are never silently regenerated.
func (s *Service) GenerateSchedule(ctx context.Context, tenantID, accountID string) ([]Installment, error) {
	acct, err := s.repo.GetByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	lock := s.accountLock(acct.ID)
	lock.Lock()
	defer lock.Unlock()

	count, err := s.repo.CountInstallments(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fault.Conflict("schedule_already_exists")
	}

	installments, err := GenerateSchedule(GenerationSpec{
		PrincipalMinor:   acct.PrincipalMinor,
		Term:             acct.Term,
		AnnualRateBPS:    acct.InterestRateBPS,
		InterestMethod:   acct.InterestMethod,
		Frequency:        acct.RepaymentFrequency,
		DisbursementDate: acct.DisbursementDate,
		GracePeriodDays:  acct.GracePeriodDays,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveSchedule(ctx, acct.ID, installments); err != nil {
		return nil, err
	}
	return s.repo.ListInstallments(ctx, acct.ID)
}

// ApplyPayment resolves the installment to its account, serializes on the
// account, runs the waterfall and persists installments, aggregates and the
// payment event atomically, then queues the repayment journal entry.
func (s *Service) ApplyPayment(ctx context.Context, tenantID string, in PaymentInput) (*Account, *PaymentResult, error) {
	if strings.TrimSpace(in.InstallmentID) == "" {
		return nil, nil, fault.Invalid("payment_id", "required")
	}
	if in.PaidAmountMinor <= 0 {
		return nil, nil, fault.Invalid("paid_amount_minor", "must be positive")
	}
	paidDate := in.PaidDate
	if paidDate.IsZero() {
		paidDate = s.now()
	}

	acct, err := s.repo.GetByInstallmentID(ctx, tenantID, in.InstallmentID)
	if err != nil {
		return nil, nil, err
	}

	lock := s.accountLock(acct.ID)
	lock.Lock()
	defer lock.Unlock()

	// Reload under the lock so two serialized payments never share a stale
	// read of the aggregates.
	acct, err = s.repo.GetByID(ctx, tenantID, acct.ID)
	if err != nil {
		return nil, nil, err
	}
	installments, err := s.repo.ListInstallments(ctx, acct.ID)
	if err != nil {
		return nil, nil, err
	}

	res, err := applyWaterfall(acct, installments, in.PaidAmountMinor, paidDate, s.policy)
	if err != nil {
		return nil, nil, err
	}

	touched := make([]Installment, 0, len(res.Touched))
	for _, idx := range res.Touched {
		touched = append(touched, installments[idx])
	}
	ev := PaymentEvent{
		AccountID:      acct.ID,
		TenantID:       acct.TenantID,
		AmountMinor:    res.AppliedMinor + res.ExcessMinor,
		InterestMinor:  res.InterestMinor,
		PrincipalMinor: res.PrincipalMinor,
		FeeMinor:       res.FeeMinor,
		CurrencyCode:   acct.CurrencyCode,
		PaidDate:       paidDate,
		RecordedAt:     s.now(),
	}
	if err := s.repo.ApplyPayment(ctx, acct, touched, ev); err != nil {
		return nil, nil, err
	}

	if err := s.enqueueRepaymentJournal(ctx, acct, res, paidDate); err != nil {
		return nil, nil, err
	}
	return acct, res, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (*Account, error) {
	return s.repo.GetByID(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Account, error) {
	return s.repo.List(ctx, f)
}

// ListInstallments returns the schedule with the overdue overlay freshly
// derived; persisted daysOverdue is never returned as-is.
func (s *Service) ListInstallments(ctx context.Context, tenantID, accountID string) ([]Installment, error) {
	acct, err := s.repo.GetByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	installments, err := s.repo.ListInstallments(ctx, acct.ID)
	if err != nil {
		return nil, err
	}
	RefreshScheduleOverdue(installments, s.now())
	return installments, nil
}

func (s *Service) Statistics(ctx context.Context, tenantID string) (*Statistics, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fault.Invalid("tenant_id", "required")
	}
	return s.repo.Statistics(ctx, tenantID, s.now())
}

func (s *Service) enqueueDisbursementJournal(ctx context.Context, acct *Account, p *productdomain.Entity) error {
	fee := money.FromMinor(p.FeeFlatMinor).
		Add(money.ApplyRate(money.FromMinor(acct.PrincipalMinor), money.RateFromBPS(p.FeeRateBPS).Fraction()))

	lines := []ledger.Line{
		ledger.Debit(ledger.AccountLoansReceivable, acct.PrincipalMinor),
		ledger.Credit(ledger.AccountCash, acct.PrincipalMinor),
	}
	if fee.IsPositive() {
		lines = append(lines,
			ledger.Debit(ledger.AccountCash, fee.Minor()),
			ledger.Credit(ledger.AccountFeeIncome, fee.Minor()),
		)
	}
	return s.enqueueJournal(ctx, ledger.Entry{
		Reference:    "disburse:" + acct.ID,
		TenantID:     acct.TenantID,
		CurrencyCode: acct.CurrencyCode,
		Memo:         "loan disbursement",
		PostedAt:     acct.DisbursementDate,
		Lines:        lines,
	})
}

func (s *Service) enqueueRepaymentJournal(ctx context.Context, acct *Account, res *PaymentResult, paidDate time.Time) error {
	received := res.AppliedMinor + res.ExcessMinor
	if received <= 0 {
		return nil
	}
	lines := []ledger.Line{ledger.Debit(ledger.AccountCash, received)}
	if res.PrincipalMinor > 0 {
		lines = append(lines, ledger.Credit(ledger.AccountLoansReceivable, res.PrincipalMinor))
	}
	if res.InterestMinor > 0 {
		lines = append(lines, ledger.Credit(ledger.AccountInterestIncome, res.InterestMinor))
	}
	if res.FeeMinor > 0 {
		lines = append(lines, ledger.Credit(ledger.AccountLateFeeIncome, res.FeeMinor))
	}
	if res.ExcessMinor > 0 {
		lines = append(lines, ledger.Credit(ledger.AccountClientCredit, res.ExcessMinor))
	}
	return s.enqueueJournal(ctx, ledger.Entry{
		Reference:    "repayment:" + acct.ID + ":" + paidDate.UTC().Format(time.RFC3339),
		TenantID:     acct.TenantID,
		CurrencyCode: acct.CurrencyCode,
		Memo:         "loan repayment",
		PostedAt:     paidDate,
		Lines:        lines,
	})
}

func (s *Service) enqueueJournal(ctx context.Context, entry ledger.Entry) error {
	payload, _ := json.Marshal(entry)
	return s.outbox.Enqueue(ctx, outboxTopicPostJournal, payload)
}

// AssessLateFees walks installments past due as of now and charges the
// configured one-off late fee on any that have none yet. Invoked by the
// worker's daily sweep.
func (s *Service) AssessLateFees(ctx context.Context, limit int32) (int, error) {
	if s.lateFeeBPS <= 0 {
		return 0, nil
	}
	overdue, err := s.repo.ListOverdueInstallments(ctx, s.now(), limit)
	if err != nil {
		return 0, err
	}
	assessed := 0
	for i := range overdue {
		inst := overdue[i]
		if inst.LateFeeMinor > 0 {
			continue
		}
		fee := money.ApplyRate(money.FromMinor(inst.PrincipalDueMinor), money.RateFromBPS(s.lateFeeBPS).Fraction())
		if !fee.IsPositive() {
			continue
		}
		if err := s.repo.AssessLateFee(ctx, inst.ID, fee.Minor()); err != nil {
			return assessed, err
		}
		assessed++
	}
	return assessed, nil
}
