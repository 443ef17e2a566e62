package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bank represents the institution issuing loans. A loan's principal may never
// exceed the bank's max loan amount at creation time.
type Bank struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Country        string          `json:"country" db:"country"`
	InterestPolicy string          `json:"interest_policy" db:"interest_policy"`
	MaxLoanAmount  decimal.Decimal `json:"max_loan_amount" db:"max_loan_amount"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

type CreateBankRequest struct {
	Name           string          `json:"name" validate:"required,max=100"`
	Country        string          `json:"country" validate:"required,max=50"`
	InterestPolicy string          `json:"interest_policy" validate:"max=100"`
	MaxLoanAmount  decimal.Decimal `json:"max_loan_amount" validate:"dgt=0"`
}
