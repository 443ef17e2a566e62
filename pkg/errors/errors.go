package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Domain errors
var (
	ErrBankNotFound              = errors.New("bank not found")
	ErrAmountExceedsLimit        = errors.New("requested amount exceeds bank limit")
	ErrInstallmentCreationFailed = errors.New("failed to create loan installments")
	ErrLoanNotFound              = errors.New("loan not found")
	ErrLoanAlreadyPaid           = errors.New("loan has already been paid")
	ErrNoPendingInstallment      = errors.New("no pending installment")
	ErrInstallmentNotFound       = errors.New("installment not found")
	ErrInstallmentNotPending     = errors.New("installment is not pending")
	ErrInstallmentNotDue         = errors.New("installment is not past due")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeBankNotFound              = "BANK_NOT_FOUND"
	ErrCodeAmountExceedsLimit        = "AMOUNT_EXCEEDS_LIMIT"
	ErrCodeInstallmentCreationFailed = "INSTALLMENT_CREATION_FAILED"
	ErrCodeLoanNotFound              = "LOAN_NOT_FOUND"
	ErrCodeLoanAlreadyPaid           = "LOAN_ALREADY_PAID"
	ErrCodeNoPendingInstallment      = "NO_PENDING_INSTALLMENT"
	ErrCodeInstallmentNotFound       = "INSTALLMENT_NOT_FOUND"
	ErrCodeInstallmentNotPending     = "INSTALLMENT_NOT_PENDING"
	ErrCodeInstallmentNotDue         = "INSTALLMENT_NOT_DUE"
	ErrCodeDatabaseError             = "DATABASE_ERROR"
)

// Wrap common errors with business context

func WrapBankNotFound(bankID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeBankNotFound,
		fmt.Sprintf("Bank with ID %s not found", bankID),
		ErrBankNotFound,
	)
}

func WrapAmountExceedsLimit(amount, limit string) *BusinessError {
	return NewBusinessError(
		ErrCodeAmountExceedsLimit,
		fmt.Sprintf("Requested amount %s exceeds bank limit %s", amount, limit),
		ErrAmountExceedsLimit,
	)
}

func WrapInstallmentCreationFailed(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentCreationFailed,
		"Failed to create loan installments, loan rolled back",
		errors.Join(ErrInstallmentCreationFailed, err),
	)
}

func WrapLoanNotFound(loanID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapLoanAlreadyPaid(loanID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyPaid,
		fmt.Sprintf("Loan with ID %s has already been paid", loanID),
		ErrLoanAlreadyPaid,
	)
}

func WrapNoPendingInstallment(loanID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeNoPendingInstallment,
		fmt.Sprintf("Loan with ID %s has no pending installment", loanID),
		ErrNoPendingInstallment,
	)
}

func WrapInstallmentNotFound(installmentID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment with ID %s not found", installmentID),
		ErrInstallmentNotFound,
	)
}

func WrapInstallmentNotPending(installmentID uuid.UUID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotPending,
		fmt.Sprintf("Installment with ID %s is %s, not PENDING", installmentID, status),
		ErrInstallmentNotPending,
	)
}

func WrapInstallmentNotDue(installmentID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotDue,
		fmt.Sprintf("Installment with ID %s is not yet past due", installmentID),
		ErrInstallmentNotDue,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}
