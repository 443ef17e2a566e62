package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/credara/lending-engine/internal/config"
	"github.com/credara/lending-engine/internal/domain"
	"github.com/credara/lending-engine/internal/repository"
	customError "github.com/credara/lending-engine/pkg/errors"
	"github.com/credara/lending-engine/pkg/money"
)

// LendingService implements the amortization and payment allocation engine:
// loan origination with its installment schedule, payment application against
// the earliest unpaid installment, the overdue transition and the balance
// projections.
type LendingService struct {
	BankRepo    repository.BankRepository
	LoanRepo    repository.LoanRepository
	PaymentRepo repository.PaymentRepository
	tx          repository.Transactor
	redis       *redis.Client
	config      *config.Config
	log         *logrus.Logger
}

func NewLendingService(
	bankRepo repository.BankRepository,
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	tx repository.Transactor,
	redisClient *redis.Client,
	cfg *config.Config,
	log *logrus.Logger,
) *LendingService {
	return &LendingService{
		BankRepo:    bankRepo,
		LoanRepo:    loanRepo,
		PaymentRepo: paymentRepo,
		tx:          tx,
		redis:       redisClient,
		config:      cfg,
		log:         log,
	}
}

// CreateBank registers a new issuing institution.
func (s *LendingService) CreateBank(ctx context.Context, request *domain.CreateBankRequest) (*domain.Bank, error) {
	now := time.Now().UTC()
	bank := &domain.Bank{
		ID:             uuid.New(),
		Name:           request.Name,
		Country:        request.Country,
		InterestPolicy: request.InterestPolicy,
		MaxLoanAmount:  request.MaxLoanAmount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.BankRepo.Create(ctx, bank); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.log.WithFields(logrus.Fields{"bank_id": bank.ID, "name": bank.Name}).Info("bank created")

	return bank, nil
}

// CreateLoan originates a loan and materializes its installment schedule in a
// single transaction. Installment k falls due k months after the request date
// and carries the fixed payment produced by the amortization formula. The loan
// never persists without its full schedule.
func (s *LendingService) CreateLoan(ctx context.Context, clientID uuid.UUID, request *domain.CreateLoanRequest, ipAddress string) (*domain.Loan, []*domain.LoanInstallment, error) {
	bank, err := s.BankRepo.GetByID(ctx, request.BankID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, customError.WrapBankNotFound(request.BankID)
	}
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	if request.Amount.GreaterThan(bank.MaxLoanAmount) {
		return nil, nil, customError.WrapAmountExceedsLimit(
			request.Amount.StringFixed(2),
			bank.MaxLoanAmount.StringFixed(2),
		)
	}

	installmentAmount := money.PeriodicPayment(request.Amount, request.InterestRate, request.InstallmentsQt)

	now := time.Now().UTC()
	loan := &domain.Loan{
		ID:             uuid.New(),
		ClientID:       clientID,
		BankID:         bank.ID,
		Amount:         request.Amount,
		InterestRate:   request.InterestRate,
		InstallmentsQt: request.InstallmentsQt,
		IPAddress:      ipAddress,
		RequestDate:    now,
		Paid:           false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	installments := make([]*domain.LoanInstallment, 0, request.InstallmentsQt)
	for k := 1; k <= request.InstallmentsQt; k++ {
		installments = append(installments, &domain.LoanInstallment{
			ID:         uuid.New(),
			LoanID:     loan.ID,
			DueDate:    money.DueDate(loan.RequestDate, k),
			Amount:     installmentAmount,
			PaidAmount: decimal.Zero,
			Status:     domain.InstallmentStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.LoanRepo.Create(ctx, loan); err != nil {
			return customError.WrapDatabaseError(err)
		}
		if err := s.LoanRepo.CreateInstallments(ctx, installments); err != nil {
			// Rolling back the transaction removes the loan as well, so the
			// loan never exists without its schedule.
			return customError.WrapInstallmentCreationFailed(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.WithFields(logrus.Fields{
		"loan_id":      loan.ID,
		"client_id":    clientID,
		"installments": len(installments),
		"amount":       loan.Amount.StringFixed(2),
	}).Info("loan created")

	return loan, installments, nil
}

// ApplyPayment allocates a payment to the loan's earliest unpaid installment.
// At most one installment is settled per call; whatever exceeds the amount
// owed on it comes back as change. The installment update, loan update and
// payment insert commit atomically, and the loan row lock serializes
// concurrent payments against the same loan.
func (s *LendingService) ApplyPayment(ctx context.Context, clientID, loanID uuid.UUID, amount decimal.Decimal) (*domain.Payment, decimal.Decimal, error) {
	var payment *domain.Payment
	change := decimal.Zero

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		loan, err := s.LoanRepo.LockByIDForClient(ctx, loanID, clientID)
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapLoanNotFound(loanID)
		}
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		if loan.Paid {
			return customError.WrapLoanAlreadyPaid(loanID)
		}

		installment, err := s.LoanRepo.EarliestUnpaidInstallment(ctx, loanID)
		if errors.Is(err, sql.ErrNoRows) {
			return customError.WrapNoPendingInstallment(loanID)
		}
		if err != nil {
			return customError.WrapDatabaseError(err)
		}

		owed := installment.Outstanding()
		applied := decimal.Min(amount, owed)
		change = amount.Sub(applied)

		now := time.Now().UTC()
		payment = &domain.Payment{
			ID:                uuid.New(),
			LoanInstallmentID: installment.ID,
			PaymentDate:       now,
			Amount:            applied,
		}

		if err := s.PaymentRepo.Create(ctx, payment); err != nil {
			return customError.WrapDatabaseError(err)
		}

		installment.PaidAmount = installment.PaidAmount.Add(applied)
		installment.UpdatedAt = now
		if installment.PaidAmount.GreaterThanOrEqual(installment.Amount) {
			installment.Status = domain.InstallmentStatusPaid
			installment.PaymentDate = &now
		}

		if err := s.LoanRepo.UpdateInstallment(ctx, installment); err != nil {
			return customError.WrapDatabaseError(err)
		}

		if installment.Status == domain.InstallmentStatusPaid {
			remaining, err := s.LoanRepo.CountUnpaidInstallments(ctx, loanID)
			if err != nil {
				return customError.WrapDatabaseError(err)
			}
			if remaining == 0 {
				if err := s.LoanRepo.SetPaid(ctx, loanID, true); err != nil {
					return customError.WrapDatabaseError(err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, decimal.Zero, err
	}

	s.invalidateBalance(ctx, loanID, clientID)

	s.log.WithFields(logrus.Fields{
		"loan_id": loanID,
		"applied": payment.Amount.StringFixed(2),
		"change":  change.StringFixed(2),
	}).Info("payment applied")

	return payment, change, nil
}

// MarkInstallmentOverdue transitions a past-due PENDING installment to
// OVERDUE. The transition is a single guarded update, so an installment that
// a concurrent payment settled in the meantime is left untouched. It is
// invoked by the time-driven sweep, never by the allocator.
func (s *LendingService) MarkInstallmentOverdue(ctx context.Context, installmentID uuid.UUID) error {
	now := time.Now().UTC()

	transition, err := s.LoanRepo.TransitionInstallmentOverdue(ctx, installmentID, now)
	if errors.Is(err, sql.ErrNoRows) {
		return s.overdueRejection(ctx, installmentID)
	}
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.invalidateBalance(ctx, transition.LoanID, transition.ClientID)

	s.log.WithFields(logrus.Fields{
		"installment_id": installmentID,
		"loan_id":        transition.LoanID,
	}).Info("installment marked overdue")

	return nil
}

// overdueRejection reads the installment to report why the transition matched
// nothing: unknown id, a status other than PENDING, or a due date still ahead.
func (s *LendingService) overdueRejection(ctx context.Context, installmentID uuid.UUID) error {
	installment, err := s.LoanRepo.GetInstallmentByID(ctx, installmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapInstallmentNotFound(installmentID)
	}
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if installment.Status != domain.InstallmentStatusPending {
		return customError.WrapInstallmentNotPending(installmentID, installment.Status)
	}
	return customError.WrapInstallmentNotDue(installmentID)
}

// GetLoanBalance returns the loan's balance snapshot for the owning client.
// Snapshots are cached in Redis for a short TTL and invalidated whenever a
// payment or an overdue transition lands on the loan.
func (s *LendingService) GetLoanBalance(ctx context.Context, clientID, loanID uuid.UUID) (*domain.BalanceSnapshot, error) {
	cacheKey := balanceCacheKey(loanID, clientID)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var snapshot domain.BalanceSnapshot
			if err := json.Unmarshal([]byte(cached), &snapshot); err == nil {
				return &snapshot, nil
			}
		}
	}

	snapshot, err := s.LoanRepo.GetBalanceSnapshot(ctx, loanID, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(loanID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if s.redis != nil {
		if encoded, err := json.Marshal(snapshot); err == nil {
			if err := s.redis.Set(ctx, cacheKey, encoded, s.config.GetBalanceTTL()).Err(); err != nil {
				s.log.WithError(err).WithField("loan_id", loanID).Warn("caching balance snapshot")
			}
		}
	}

	return snapshot, nil
}

// ListLoans returns a page of the client's loans with outstanding balances.
func (s *LendingService) ListLoans(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.LoanSummary, error) {
	loans, err := s.LoanRepo.ListByClient(ctx, clientID, limit, offset)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loans, nil
}

// ListPayments returns a page of the client's payments, newest first.
func (s *LendingService) ListPayments(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.PaymentRecord, error) {
	payments, err := s.PaymentRepo.ListByClient(ctx, clientID, limit, offset)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

// SweepOverdueInstallments flips every PENDING installment due before the
// cutoff to OVERDUE and reports how many were transitioned.
func (s *LendingService) SweepOverdueInstallments(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	due, err := s.LoanRepo.ListDueInstallments(ctx, cutoff, limit)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	marked := 0
	for _, installment := range due {
		if err := s.MarkInstallmentOverdue(ctx, installment.ID); err != nil {
			s.log.WithError(err).WithField("installment_id", installment.ID).Warn("overdue sweep skipped installment")
			continue
		}
		marked++
	}

	return marked, nil
}

func (s *LendingService) invalidateBalance(ctx context.Context, loanID, clientID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, balanceCacheKey(loanID, clientID)).Err(); err != nil {
		s.log.WithError(err).WithField("loan_id", loanID).Warn("invalidating balance snapshot")
	}
}

func balanceCacheKey(loanID, clientID uuid.UUID) string {
	return fmt.Sprintf("balance:%s:%s", loanID, clientID)
}
