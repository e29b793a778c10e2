// Package ledger emits balanced journal entries for the accounting system.
// The loan core never posts double-entry bookkeeping itself; it hands the
// amounts, dates and account references to a JournalWriter and the ledger
// service does the posting.
package ledger

import "time"

// Chart-of-account codes the loan core posts against.
const (
	AccountCash            = "1000-cash"
	AccountLoansReceivable = "1200-loans-receivable"
	AccountClientCredit    = "2100-client-credit"
	AccountInterestIncome  = "4000-interest-income"
	AccountFeeIncome       = "4100-fee-income"
	AccountLateFeeIncome   = "4200-late-fee-income"
)

const (
	SideDebit  = "debit"
	SideCredit = "credit"
)

type Line struct {
	AccountCode string `json:"account_code"`
	Side        string `json:"side"`
	AmountMinor int64  `json:"amount_minor"`
}

type Entry struct {
	Reference    string    `json:"reference"`
	TenantID     string    `json:"tenant_id"`
	CurrencyCode string    `json:"currency_code"`
	Memo         string    `json:"memo"`
	PostedAt     time.Time `json:"posted_at"`
	Lines        []Line    `json:"lines"`
}

// Balanced reports whether debits equal credits and every line is positive.
func (e Entry) Balanced() bool {
	if len(e.Lines) == 0 {
		return false
	}
	var debits, credits int64
	for _, l := range e.Lines {
		if l.AmountMinor <= 0 {
			return false
		}
		switch l.Side {
		case SideDebit:
			debits += l.AmountMinor
		case SideCredit:
			credits += l.AmountMinor
		default:
			return false
		}
	}
	return debits == credits
}

func Debit(code string, amountMinor int64) Line {
	return Line{AccountCode: code, Side: SideDebit, AmountMinor: amountMinor}
}

func Credit(code string, amountMinor int64) Line {
	return Line{AccountCode: code, Side: SideCredit, AmountMinor: amountMinor}
}
