// Package service internal/application/service/summary_service.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/aggregation"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/middleware"
)

// MonthLayout is the accepted format of the month parameter
const MonthLayout = "2006-01"

// MonthSummary is the dashboard view of one user's month
type MonthSummary struct {
	UserID string
	Month  string
	Start  time.Time
	End    time.Time
	aggregation.Summary
}

// SummaryService builds monthly dashboard summaries
type SummaryService struct {
	query  *QueryService
	logger logger.Logger
}

// NewSummaryService creates a new summary service
func NewSummaryService(query *QueryService, log logger.Logger) *SummaryService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &SummaryService{
		query:  query,
		logger: log,
	}
}

// GetMonthSummary fetches the user's transactions for month (YYYY-MM, UTC) and reduces them
func (s *SummaryService) GetMonthSummary(ctx context.Context, userID, month string) (*MonthSummary, error) {
	requestID := middleware.GetRequestID(ctx)

	userID = strings.TrimSpace(userID)
	month = strings.TrimSpace(month)
	if userID == "" || month == "" {
		return nil, newValidationError(MsgMissingParameters, "")
	}

	selected, err := time.Parse(MonthLayout, month)
	if err != nil {
		return nil, newValidationError(MsgInvalidMonth, "month")
	}

	start, end := aggregation.MonthRange(selected)

	transactions, err := s.query.FindInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	summary := aggregation.Summarize(transactions, selected)

	s.logger.Info("Month summary computed", map[string]interface{}{
		"request_id":     requestID,
		"user_id":        userID,
		"month":          month,
		"count":          summary.Count,
		"total_income":   summary.TotalIncome.String(),
		"total_expenses": summary.TotalExpenses.String(),
		"categories":     len(summary.CategoryBreakdown),
	})

	return &MonthSummary{
		UserID:  userID,
		Month:   month,
		Start:   start,
		End:     end,
		Summary: summary,
	}, nil
}
