package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan represents a single credit extended to a client. Paid is true iff every
// installment of the loan has status PAID; only the payment allocator flips it.
type Loan struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	ClientID       uuid.UUID       `json:"client_id" db:"client_id"`
	BankID         uuid.UUID       `json:"bank_id" db:"bank_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	InterestRate   decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	InstallmentsQt int             `json:"installments_qt" db:"installments_qt"`
	IPAddress      string          `json:"ip_address" db:"ip_address"`
	RequestDate    time.Time       `json:"request_date" db:"request_date"`
	Paid           bool            `json:"paid" db:"paid"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	BankID         uuid.UUID       `json:"bank_id" validate:"required"`
	Amount         decimal.Decimal `json:"amount" validate:"dgt=0"`
	InterestRate   decimal.Decimal `json:"interest_rate" validate:"dgte=0,dlte=100"`
	InstallmentsQt int             `json:"installments_qt" validate:"required,gt=0"`
}

type CreateLoanResponse struct {
	Loan         *Loan              `json:"loan"`
	Installments []*LoanInstallment `json:"installments"`
}

// LoanSummary is one row of the client's loan listing.
type LoanSummary struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Amount             decimal.Decimal `json:"amount" db:"amount"`
	InterestRate       decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	Paid               bool            `json:"paid" db:"paid"`
	RequestDate        time.Time       `json:"request_date" db:"request_date"`
	BankName           string          `json:"bank_name" db:"bank_name"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance" db:"outstanding_balance"`
}

// BalanceSnapshot aggregates the current ledger state of one loan. It is a
// read-only projection computed from persisted state at call time.
type BalanceSnapshot struct {
	LoanID              uuid.UUID       `json:"loan_id" db:"loan_id"`
	Amount              decimal.Decimal `json:"amount" db:"amount"`
	InterestRate        decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	Paid                bool            `json:"paid" db:"paid"`
	BankName            string          `json:"bank_name" db:"bank_name"`
	InstallmentsCount   int             `json:"installments_count" db:"installments_count"`
	PaidInstallments    int             `json:"paid_installments" db:"paid_installments"`
	PendingInstallments int             `json:"pending_installments" db:"pending_installments"`
	OverdueInstallments int             `json:"overdue_installments" db:"overdue_installments"`
	TotalPaid           decimal.Decimal `json:"total_paid" db:"total_paid"`
	OutstandingBalance  decimal.Decimal `json:"outstanding_balance" db:"outstanding_balance"`
	TotalPending        decimal.Decimal `json:"total_pending" db:"total_pending"`
	TotalOverdue        decimal.Decimal `json:"total_overdue" db:"total_overdue"`
}
