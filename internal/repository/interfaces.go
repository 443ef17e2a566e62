package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/credara/lending-engine/internal/domain"
)

// BankRepository defines the interface for bank data operations
type BankRepository interface {
	// Create creates a new bank
	Create(ctx context.Context, bank *domain.Bank) error

	// GetByID retrieves a bank by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bank, error)
}

// LoanRepository defines the interface for loan and installment data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// LockByIDForClient retrieves a loan owned by the given client and locks
	// its row for the duration of the surrounding transaction
	LockByIDForClient(ctx context.Context, id, clientID uuid.UUID) (*domain.Loan, error)

	// SetPaid updates the loan's paid flag
	SetPaid(ctx context.Context, id uuid.UUID, paid bool) error

	// ListByClient retrieves a page of the client's loans with their
	// outstanding balances, newest first
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.LoanSummary, error)

	// CreateInstallments creates the loan's installment schedule
	CreateInstallments(ctx context.Context, installments []*domain.LoanInstallment) error

	// GetInstallmentByID retrieves a single installment
	GetInstallmentByID(ctx context.Context, id uuid.UUID) (*domain.LoanInstallment, error)

	// EarliestUnpaidInstallment retrieves the PENDING or OVERDUE installment
	// of the loan with the smallest due date
	EarliestUnpaidInstallment(ctx context.Context, loanID uuid.UUID) (*domain.LoanInstallment, error)

	// CountUnpaidInstallments counts the loan's PENDING and OVERDUE installments
	CountUnpaidInstallments(ctx context.Context, loanID uuid.UUID) (int, error)

	// UpdateInstallment persists the installment's mutable fields; callers
	// must hold the loan row lock taken by LockByIDForClient
	UpdateInstallment(ctx context.Context, installment *domain.LoanInstallment) error

	// TransitionInstallmentOverdue atomically moves a PENDING installment
	// past its due date to OVERDUE and reports the affected loan; it returns
	// sql.ErrNoRows when the installment no longer matches
	TransitionInstallmentOverdue(ctx context.Context, id uuid.UUID, now time.Time) (*domain.InstallmentTransition, error)

	// ListDueInstallments retrieves PENDING installments due before the cutoff
	ListDueInstallments(ctx context.Context, cutoff time.Time, limit int) ([]*domain.LoanInstallment, error)

	// GetBalanceSnapshot aggregates the loan's ledger for the owning client
	GetBalanceSnapshot(ctx context.Context, id, clientID uuid.UUID) (*domain.BalanceSnapshot, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create creates a new payment record
	Create(ctx context.Context, payment *domain.Payment) error

	// ListByClient retrieves a page of the client's payments, newest first
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.PaymentRecord, error)
}
