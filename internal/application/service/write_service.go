package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/repository"
	domainservice "github.com/damon-houk/finance-tracker/internal/domain/service"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/middleware"
	"github.com/shopspring/decimal"
)

// CreateTransactionInput carries the raw fields of a new transaction.
// Amount is the textual form of the submitted number.
type CreateTransactionInput struct {
	UserID      string
	Amount      string
	Description string
	Type        string
	Category    string
}

// WriteService validates and stores new transactions
type WriteService struct {
	repo      repository.TransactionRepository
	publisher domainservice.EventPublisher
	logger    logger.Logger
	now       func() time.Time
}

// WriteOption customises a WriteService
type WriteOption func(*WriteService)

// WithPublisher announces stored transactions through p
func WithPublisher(p domainservice.EventPublisher) WriteOption {
	return func(s *WriteService) {
		s.publisher = p
	}
}

// WithClock replaces the clock used to stamp new transactions
func WithClock(now func() time.Time) WriteOption {
	return func(s *WriteService) {
		s.now = now
	}
}

// NewWriteService creates a new write service
func NewWriteService(repo repository.TransactionRepository, log logger.Logger, opts ...WriteOption) *WriteService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	s := &WriteService{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateTransaction validates the input, stamps the current time and inserts one row
func (s *WriteService) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*entity.Transaction, error) {
	requestID := middleware.GetRequestID(ctx)

	tx, err := s.buildTransaction(in)
	if err != nil {
		s.logger.Warn("Rejected new transaction", map[string]interface{}{
			"request_id": requestID,
			"user_id":    in.UserID,
			"error":      err.Error(),
		})
		return nil, err
	}

	stored, err := s.repo.Insert(ctx, tx)
	if err != nil {
		s.logger.Error("Failed to insert transaction", map[string]interface{}{
			"request_id": requestID,
			"user_id":    tx.UserID,
			"error":      err.Error(),
		})
		return nil, &UpstreamError{Op: "insert transaction", Err: err}
	}

	s.logger.Info("Transaction created", map[string]interface{}{
		"request_id": requestID,
		"id":         stored.ID,
		"user_id":    stored.UserID,
		"type":       stored.Type,
		"category":   stored.Category,
	})

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionCreated(ctx, stored); err != nil {
			s.logger.Warn("Failed to publish transaction created event", map[string]interface{}{
				"request_id": requestID,
				"id":         stored.ID,
				"error":      err.Error(),
			})
		}
	}

	return stored, nil
}

func (s *WriteService) buildTransaction(in CreateTransactionInput) (*entity.Transaction, error) {
	userID := strings.TrimSpace(in.UserID)
	amountText := strings.TrimSpace(in.Amount)
	description := strings.TrimSpace(in.Description)
	kind := strings.TrimSpace(in.Type)
	category := strings.TrimSpace(in.Category)

	if userID == "" || amountText == "" || description == "" || kind == "" || category == "" {
		return nil, newValidationError(MsgMissingFields, missingField(userID, amountText, description, kind, category))
	}

	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	amount, err := ParseAmount(amountText)
	if err != nil {
		return nil, newValidationError(MsgInvalidAmount, "amount")
	}

	tx := &entity.Transaction{
		UserID:      userID,
		Amount:      amount,
		Description: description,
		Type:        entity.TransactionType(kind),
		Category:    entity.Category(category),
		Date:        s.now().UTC(),
	}

	if err := tx.Validate(); err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidType):
			return nil, newValidationError(MsgInvalidType, "type")
		case errors.Is(err, entity.ErrInvalidCategory):
			return nil, newValidationError(MsgInvalidCategory, "category")
		case errors.Is(err, entity.ErrNegativeAmount):
			return nil, newValidationError(MsgInvalidAmount, "amount")
		default:
			return nil, newValidationError(MsgInvalidDesc, "description")
		}
	}

	return tx, nil
}

func missingField(userID, amount, description, kind, category string) string {
	switch {
	case userID == "":
		return "userId"
	case amount == "":
		return "amount"
	case description == "":
		return "description"
	case kind == "":
		return "type"
	default:
		return "category"
	}
}

// Bounds on accepted amounts. The exponent limits keep huge or tiny e-notation values
// from expanding into enormous digit strings when formatted.
const (
	maxAmountTextLen  = 64
	maxAmountExponent = 15
	minAmountExponent = -32
)

// ErrAmountOutOfRange is returned by ParseAmount for values outside the supported magnitude
var ErrAmountOutOfRange = errors.New("amount out of range")

// ParseAmount converts the textual amount into a finite, non-negative decimal.
// Anything that is not entirely a number is rejected rather than read as zero.
func ParseAmount(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if len(value) > maxAmountTextLen {
		return decimal.Zero, ErrAmountOutOfRange
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}

	// checked before anything formats or converts the value
	if exp := amount.Exponent(); exp > maxAmountExponent || exp < minAmountExponent {
		return decimal.Zero, ErrAmountOutOfRange
	}
	if math.IsInf(amount.InexactFloat64(), 0) {
		return decimal.Zero, ErrAmountOutOfRange
	}

	if amount.IsNegative() {
		return decimal.Zero, entity.ErrNegativeAmount
	}

	return amount, nil
}
