package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/repository"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/middleware"
)

// acceptedDateLayouts are tried in order when parsing range bounds
var acceptedDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ListTransactionsInput carries the raw query parameters of a range read
type ListTransactionsInput struct {
	StartDate string
	EndDate   string
	UserID    string
}

// QueryService reads a user's transactions for a date range
type QueryService struct {
	repo   repository.TransactionRepository
	logger logger.Logger
}

// NewQueryService creates a new query service
func NewQueryService(repo repository.TransactionRepository, log logger.Logger) *QueryService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &QueryService{
		repo:   repo,
		logger: log,
	}
}

// ListTransactions validates the raw parameters and returns the user's transactions with
// startDate <= date <= endDate, newest first
func (s *QueryService) ListTransactions(ctx context.Context, in ListTransactionsInput) ([]*entity.Transaction, error) {
	if strings.TrimSpace(in.StartDate) == "" || strings.TrimSpace(in.EndDate) == "" || strings.TrimSpace(in.UserID) == "" {
		return nil, newValidationError(MsgMissingParameters, "")
	}

	start, err := ParseTimestamp(in.StartDate)
	if err != nil {
		return nil, newValidationError(MsgInvalidDateRange, "startDate")
	}

	end, err := ParseTimestamp(in.EndDate)
	if err != nil {
		return nil, newValidationError(MsgInvalidDateRange, "endDate")
	}

	return s.FindInRange(ctx, strings.TrimSpace(in.UserID), start, end)
}

// FindInRange is ListTransactions for already-parsed bounds
func (s *QueryService) FindInRange(ctx context.Context, userID string, start, end time.Time) ([]*entity.Transaction, error) {
	requestID := middleware.GetRequestID(ctx)

	if userID == "" {
		return nil, newValidationError(MsgMissingParameters, "userId")
	}
	if err := ValidateUserID(userID); err != nil {
		return nil, err
	}

	if start.After(end) {
		return nil, newValidationError(MsgInvalidDateRange, "startDate after endDate")
	}

	s.logger.Debug("Querying transactions", map[string]interface{}{
		"request_id": requestID,
		"user_id":    userID,
		"start":      start.Format(time.RFC3339),
		"end":        end.Format(time.RFC3339),
	})

	transactions, err := s.repo.FindByUserInRange(ctx, repository.RangeQuery{
		UserID: userID,
		Start:  start.UTC(),
		End:    end.UTC(),
	})
	if err != nil {
		s.logger.Error("Failed to query transactions", map[string]interface{}{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		})
		return nil, &UpstreamError{Op: "find transactions", Err: err}
	}

	if transactions == nil {
		transactions = []*entity.Transaction{}
	}

	s.logger.Info("Transactions queried", map[string]interface{}{
		"request_id": requestID,
		"user_id":    userID,
		"count":      len(transactions),
	})

	return transactions, nil
}

// userIDForbidden are characters table storage refuses in a PartitionKey
const userIDForbidden = "/\\#?"

const maxUserIDLen = 256

// ValidateUserID rejects ids that could not be stored as a key by every backend:
// control characters, the characters in userIDForbidden and overlong ids.
func ValidateUserID(userID string) error {
	if len(userID) > maxUserIDLen || strings.ContainsAny(userID, userIDForbidden) {
		return newValidationError(MsgInvalidUserID, "userId")
	}
	for _, r := range userID {
		if unicode.IsControl(r) {
			return newValidationError(MsgInvalidUserID, "userId")
		}
	}
	return nil
}

// ParseTimestamp accepts RFC 3339 timestamps (with or without fractional seconds), zone-less
// date-times and bare dates. Zone-less values are read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	var lastErr error
	for _, layout := range acceptedDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}
