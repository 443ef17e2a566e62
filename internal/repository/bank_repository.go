package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/credara/lending-engine/internal/domain"
)

type bankRepository struct {
	db *sqlx.DB
}

func NewBankRepository(db *sqlx.DB) BankRepository {
	return &bankRepository{db: db}
}

func (r *bankRepository) Create(ctx context.Context, bank *domain.Bank) error {
	query := `
		INSERT INTO banks (id, name, country, interest_policy, max_loan_amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		bank.ID,
		bank.Name,
		bank.Country,
		bank.InterestPolicy,
		bank.MaxLoanAmount,
		bank.CreatedAt,
		bank.UpdatedAt,
	)

	return err
}

func (r *bankRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bank, error) {
	query := `
		SELECT id, name, country, interest_policy, max_loan_amount, created_at, updated_at
		FROM banks
		WHERE id = $1
	`

	var bank domain.Bank
	if err := sqlx.GetContext(ctx, ext(ctx, r.db), &bank, query, id); err != nil {
		return nil, err
	}

	return &bank, nil
}
