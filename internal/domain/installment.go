package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	InstallmentStatusPending = "PENDING"
	InstallmentStatusPaid    = "PAID"
	InstallmentStatusOverdue = "OVERDUE"
)

// LoanInstallment is one scheduled obligation within a loan. Installments of a
// loan have strictly increasing due dates. PAID is terminal; PENDING moves to
// OVERDUE only through the time-driven sweep, never inside the allocator.
type LoanInstallment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	LoanID      uuid.UUID       `json:"loan_id" db:"loan_id"`
	DueDate     time.Time       `json:"due_date" db:"due_date"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	PaymentDate *time.Time      `json:"payment_date,omitempty" db:"payment_date"`
	Status      string          `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Outstanding returns the amount still owed on this installment.
func (i *LoanInstallment) Outstanding() decimal.Decimal {
	return i.Amount.Sub(i.PaidAmount)
}

// InstallmentTransition identifies the loan and owner affected by an
// installment status transition.
type InstallmentTransition struct {
	LoanID   uuid.UUID `db:"loan_id"`
	ClientID uuid.UUID `db:"client_id"`
}
