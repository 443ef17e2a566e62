package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is an immutable record of funds applied to one installment. It is
// created once per successful allocation and never mutated.
type Payment struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	LoanInstallmentID uuid.UUID       `json:"loan_installment_id" db:"loan_installment_id"`
	PaymentDate       time.Time       `json:"payment_date" db:"payment_date"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
}

type ApplyPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"dgt=0"`
}

type ApplyPaymentResponse struct {
	Payment *Payment        `json:"payment"`
	Change  decimal.Decimal `json:"change"`
}

// PaymentRecord is one row of the client's payment listing, joined through the
// installment up to the loan and its bank.
type PaymentRecord struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	PaymentDate       time.Time       `json:"payment_date" db:"payment_date"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	LoanInstallmentID uuid.UUID       `json:"loan_installment_id" db:"loan_installment_id"`
	LoanID            uuid.UUID       `json:"loan_id" db:"loan_id"`
	BankName          string          `json:"bank_name" db:"bank_name"`
}
