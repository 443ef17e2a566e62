package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/credara/lending-engine/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

const loanColumns = `id, client_id, bank_id, amount, interest_rate, installments_qt, ip_address, request_date, paid, created_at, updated_at`

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		loan.ID,
		loan.ClientID,
		loan.BankID,
		loan.Amount,
		loan.InterestRate,
		loan.InstallmentsQt,
		loan.IPAddress,
		loan.RequestDate,
		loan.Paid,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) LockByIDForClient(ctx context.Context, id, clientID uuid.UUID) (*domain.Loan, error) {
	// The row lock serializes concurrent payments against the same loan.
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = $1 AND client_id = $2
		FOR UPDATE
	`

	var loan domain.Loan
	if err := sqlx.GetContext(ctx, ext(ctx, r.db), &loan, query, id, clientID); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) SetPaid(ctx context.Context, id uuid.UUID, paid bool) error {
	query := `
		UPDATE loans
		SET paid = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := ext(ctx, r.db).ExecContext(ctx, query, id, paid, time.Now().UTC())
	return err
}

func (r *loanRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.LoanSummary, error) {
	query := `
		SELECT l.id, l.amount, l.interest_rate, l.paid, l.request_date,
		       b.name AS bank_name,
		       COALESCE(SUM(i.amount - i.paid_amount), 0) AS outstanding_balance
		FROM loans l
		JOIN banks b ON b.id = l.bank_id
		LEFT JOIN loan_installments i ON i.loan_id = l.id
		WHERE l.client_id = $1
		GROUP BY l.id, l.amount, l.interest_rate, l.paid, l.request_date, b.name
		ORDER BY l.request_date DESC
		LIMIT $2 OFFSET $3
	`

	loans := make([]*domain.LoanSummary, 0)
	if err := sqlx.SelectContext(ctx, ext(ctx, r.db), &loans, query, clientID, limit, offset); err != nil {
		return nil, err
	}

	return loans, nil
}

const installmentColumns = `id, loan_id, due_date, amount, paid_amount, payment_date, status, created_at, updated_at`

func (r *loanRepository) CreateInstallments(ctx context.Context, installments []*domain.LoanInstallment) error {
	query := `
		INSERT INTO loan_installments (` + installmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	e := ext(ctx, r.db)
	for _, installment := range installments {
		_, err := e.ExecContext(ctx, query,
			installment.ID,
			installment.LoanID,
			installment.DueDate,
			installment.Amount,
			installment.PaidAmount,
			installment.PaymentDate,
			installment.Status,
			installment.CreatedAt,
			installment.UpdatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *loanRepository) GetInstallmentByID(ctx context.Context, id uuid.UUID) (*domain.LoanInstallment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM loan_installments
		WHERE id = $1
	`

	var installment domain.LoanInstallment
	if err := sqlx.GetContext(ctx, ext(ctx, r.db), &installment, query, id); err != nil {
		return nil, err
	}

	return &installment, nil
}

func (r *loanRepository) EarliestUnpaidInstallment(ctx context.Context, loanID uuid.UUID) (*domain.LoanInstallment, error) {
	// Locking the installment row keeps the overdue transition from
	// interleaving with the allocation that follows this read.
	query := `
		SELECT ` + installmentColumns + `
		FROM loan_installments
		WHERE loan_id = $1 AND status IN ('PENDING', 'OVERDUE')
		ORDER BY due_date
		LIMIT 1
		FOR UPDATE
	`

	var installment domain.LoanInstallment
	if err := sqlx.GetContext(ctx, ext(ctx, r.db), &installment, query, loanID); err != nil {
		return nil, err
	}

	return &installment, nil
}

func (r *loanRepository) CountUnpaidInstallments(ctx context.Context, loanID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM loan_installments
		WHERE loan_id = $1 AND status IN ('PENDING', 'OVERDUE')
	`

	var count int
	if err := sqlx.GetContext(ctx, ext(ctx, r.db), &count, query, loanID); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *loanRepository) UpdateInstallment(ctx context.Context, installment *domain.LoanInstallment) error {
	query := `
		UPDATE loan_installments
		SET paid_amount = $2, payment_date = $3, status = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		installment.ID,
		installment.PaidAmount,
		installment.PaymentDate,
		installment.Status,
		installment.UpdatedAt,
	)

	return err
}

func (r *loanRepository) TransitionInstallmentOverdue(ctx context.Context, id uuid.UUID, now time.Time) (*domain.InstallmentTransition, error) {
	// Single guarded statement: an installment settled or transitioned by a
	// concurrent writer no longer matches the WHERE clause, so its paid
	// amount and payment date are never touched.
	query := `
		UPDATE loan_installments i
		SET status = 'OVERDUE', updated_at = $2
		FROM loans l
		WHERE i.id = $1
		  AND l.id = i.loan_id
		  AND i.status = 'PENDING'
		  AND i.due_date < $2
		RETURNING i.loan_id, l.client_id
	`

	var transition domain.InstallmentTransition
	if err := sqlx.GetContext(ctx, ext(ctx, r.db), &transition, query, id, now); err != nil {
		return nil, err
	}

	return &transition, nil
}

func (r *loanRepository) ListDueInstallments(ctx context.Context, cutoff time.Time, limit int) ([]*domain.LoanInstallment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM loan_installments
		WHERE status = 'PENDING' AND due_date < $1
		ORDER BY due_date
		LIMIT $2
	`

	installments := make([]*domain.LoanInstallment, 0)
	if err := sqlx.SelectContext(ctx, ext(ctx, r.db), &installments, query, cutoff, limit); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *loanRepository) GetBalanceSnapshot(ctx context.Context, id, clientID uuid.UUID) (*domain.BalanceSnapshot, error) {
	query := `
		SELECT l.id AS loan_id, l.amount, l.interest_rate, l.paid,
		       b.name AS bank_name,
		       COUNT(i.id) AS installments_count,
		       COUNT(i.id) FILTER (WHERE i.status = 'PAID') AS paid_installments,
		       COUNT(i.id) FILTER (WHERE i.status = 'PENDING') AS pending_installments,
		       COUNT(i.id) FILTER (WHERE i.status = 'OVERDUE') AS overdue_installments,
		       COALESCE(SUM(i.paid_amount), 0) AS total_paid,
		       COALESCE(SUM(i.amount - i.paid_amount), 0) AS outstanding_balance,
		       COALESCE(SUM(i.amount - i.paid_amount) FILTER (WHERE i.status = 'PENDING'), 0) AS total_pending,
		       COALESCE(SUM(i.amount - i.paid_amount) FILTER (WHERE i.status = 'OVERDUE'), 0) AS total_overdue
		FROM loans l
		JOIN banks b ON b.id = l.bank_id
		LEFT JOIN loan_installments i ON i.loan_id = l.id
		WHERE l.id = $1 AND l.client_id = $2
		GROUP BY l.id, l.amount, l.interest_rate, l.paid, b.name
	`

	var snapshot domain.BalanceSnapshot
	if err := sqlx.GetContext(ctx, ext(ctx, r.db), &snapshot, query, id, clientID); err != nil {
		return nil, err
	}

	return &snapshot, nil
}
