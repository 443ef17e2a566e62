package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/credara/lending-engine/internal/domain"
	customError "github.com/credara/lending-engine/pkg/errors"
	"github.com/credara/lending-engine/pkg/response"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// LendingService is the engine surface the HTTP layer consumes.
type LendingService interface {
	CreateBank(ctx context.Context, request *domain.CreateBankRequest) (*domain.Bank, error)
	CreateLoan(ctx context.Context, clientID uuid.UUID, request *domain.CreateLoanRequest, ipAddress string) (*domain.Loan, []*domain.LoanInstallment, error)
	ApplyPayment(ctx context.Context, clientID, loanID uuid.UUID, amount decimal.Decimal) (*domain.Payment, decimal.Decimal, error)
	GetLoanBalance(ctx context.Context, clientID, loanID uuid.UUID) (*domain.BalanceSnapshot, error)
	ListLoans(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.LoanSummary, error)
	ListPayments(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.PaymentRecord, error)
}

type LendingHandler struct {
	service   LendingService
	validator *validator.Validate
	log       *logrus.Logger
}

func NewLendingHandler(svc LendingService, log *logrus.Logger) *LendingHandler {
	return &LendingHandler{
		service:   svc,
		validator: newValidator(),
		log:       log,
	}
}

// newValidator registers dgt/dgte/dlte tags comparing decimal.Decimal fields
// exactly, so bounds checks never pass through binary floats.
func newValidator() *validator.Validate {
	v := validator.New()
	registerDecimalBound(v, "dgt", decimal.Decimal.GreaterThan)
	registerDecimalBound(v, "dgte", decimal.Decimal.GreaterThanOrEqual)
	registerDecimalBound(v, "dlte", decimal.Decimal.LessThanOrEqual)
	return v
}

func registerDecimalBound(v *validator.Validate, tag string, cmp func(d, bound decimal.Decimal) bool) {
	_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return cmp(d, bound)
	})
}

// CreateBank handles POST /api/v1/banks
func (h *LendingHandler) CreateBank(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateBankRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "invalid bank payload", err)
		return
	}

	bank, err := h.service.CreateBank(r.Context(), &request)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, bank)
}

// CreateLoan handles POST /api/v1/loans
func (h *LendingHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	clientID, ok := ClientIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "missing client identity")
		return
	}

	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "invalid loan payload", err)
		return
	}

	loan, installments, err := h.service.CreateLoan(r.Context(), clientID, &request, clientIP(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, &domain.CreateLoanResponse{
		Loan:         loan,
		Installments: installments,
	})
}

// ListLoans handles GET /api/v1/loans
func (h *LendingHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	clientID, ok := ClientIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "missing client identity")
		return
	}

	limit, offset, err := pagination(r)
	if err != nil {
		response.BadRequest(w, "invalid pagination parameters", err)
		return
	}

	loans, err := h.service.ListLoans(r.Context(), clientID, limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, loans)
}

// GetLoanBalance handles GET /api/v1/loans/{loanId}/balance
func (h *LendingHandler) GetLoanBalance(w http.ResponseWriter, r *http.Request) {
	clientID, ok := ClientIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "missing client identity")
		return
	}

	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	snapshot, err := h.service.GetLoanBalance(r.Context(), clientID, loanID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, snapshot)
}

// ApplyPayment handles POST /api/v1/loans/{loanId}/payments
func (h *LendingHandler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	clientID, ok := ClientIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "missing client identity")
		return
	}

	loanID, err := uuid.Parse(mux.Vars(r)["loanId"])
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	var request domain.ApplyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "invalid payment payload", err)
		return
	}

	payment, change, err := h.service.ApplyPayment(r.Context(), clientID, loanID, request.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, &domain.ApplyPaymentResponse{
		Payment: payment,
		Change:  change,
	})
}

// ListPayments handles GET /api/v1/payments
func (h *LendingHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	clientID, ok := ClientIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "missing client identity")
		return
	}

	limit, offset, err := pagination(r)
	if err != nil {
		response.BadRequest(w, "invalid pagination parameters", err)
		return
	}

	payments, err := h.service.ListPayments(r.Context(), clientID, limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Success(w, payments)
}

func pagination(r *http.Request) (limit, offset int, err error) {
	limit = defaultPageLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxPageLimit {
			return 0, 0, errors.New("limit must be between 1 and 100")
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, errors.New("offset must be non-negative")
		}
	}

	return limit, offset, nil
}

func (h *LendingHandler) writeError(w http.ResponseWriter, err error) {
	var bizErr *customError.BusinessError
	if !errors.As(err, &bizErr) {
		h.log.WithError(err).Error("unhandled error")
		response.InternalServerError(w, "operation failed", nil)
		return
	}

	switch bizErr.Code {
	case customError.ErrCodeBankNotFound,
		customError.ErrCodeLoanNotFound,
		customError.ErrCodeInstallmentNotFound:
		response.NotFound(w, bizErr.Message)
	case customError.ErrCodeAmountExceedsLimit,
		customError.ErrCodeLoanAlreadyPaid,
		customError.ErrCodeNoPendingInstallment,
		customError.ErrCodeInstallmentNotPending,
		customError.ErrCodeInstallmentNotDue:
		response.UnprocessableEntity(w, bizErr.Message, bizErr.Unwrap())
	default:
		h.log.WithError(err).Error("operation failed")
		response.InternalServerError(w, "operation failed", nil)
	}
}
