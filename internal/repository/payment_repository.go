package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/credara/lending-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, loan_installment_id, payment_date, amount)
		VALUES ($1, $2, $3, $4)
	`

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		payment.ID,
		payment.LoanInstallmentID,
		payment.PaymentDate,
		payment.Amount,
	)

	return err
}

func (r *paymentRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT p.id, p.payment_date, p.amount, p.loan_installment_id,
		       l.id AS loan_id, b.name AS bank_name
		FROM payments p
		JOIN loan_installments i ON i.id = p.loan_installment_id
		JOIN loans l ON l.id = i.loan_id
		JOIN banks b ON b.id = l.bank_id
		WHERE l.client_id = $1
		ORDER BY p.payment_date DESC
		LIMIT $2 OFFSET $3
	`

	payments := make([]*domain.PaymentRecord, 0)
	if err := sqlx.SelectContext(ctx, ext(ctx, r.db), &payments, query, clientID, limit, offset); err != nil {
		return nil, err
	}

	return payments, nil
}
