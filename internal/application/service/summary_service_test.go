package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/repository"
	"github.com/damon-houk/finance-tracker/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetMonthSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("Summarises the month", func(t *testing.T) {
		repo := new(mocks.MockTransactionRepository)
		svc := NewSummaryService(NewQueryService(repo, quietLogger()), quietLogger())

		rows := []*entity.Transaction{
			{ID: "1", UserID: "user_1", Amount: decimal.NewFromInt(100), Type: entity.TypeIncome, Category: entity.CategoryIncome},
			{ID: "2", UserID: "user_1", Amount: decimal.NewFromInt(40), Type: entity.TypeExpense, Category: entity.CategoryFood},
			{ID: "3", UserID: "user_1", Amount: decimal.NewFromInt(10), Type: entity.TypeExpense, Category: entity.CategoryFood},
			{ID: "4", UserID: "user_1", Amount: decimal.NewFromInt(5), Type: entity.TypeExpense, Category: entity.CategoryTransportation},
		}

		repo.On("FindByUserInRange", ctx, repository.RangeQuery{
			UserID: "user_1",
			Start:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			End:    time.Date(2024, 2, 29, 23, 59, 59, 999999999, time.UTC),
		}).Return(rows, nil).Once()

		summary, err := svc.GetMonthSummary(ctx, "user_1", "2024-02")

		require.NoError(t, err)
		assert.Equal(t, "2024-02", summary.Month)
		assert.Equal(t, "100", summary.TotalIncome.String())
		assert.Equal(t, "55", summary.TotalExpenses.String())
		assert.Equal(t, "45", summary.Net.String())
		assert.Equal(t, "Feb", summary.PeriodSummary[0].Label)
		require.Len(t, summary.CategoryBreakdown, 2)
		assert.Equal(t, entity.CategoryFood, summary.CategoryBreakdown[0].Name)
		assert.Equal(t, "50", summary.CategoryBreakdown[0].Value.String())
		repo.AssertExpectations(t)
	})

	t.Run("Invalid month", func(t *testing.T) {
		repo := new(mocks.MockTransactionRepository)
		svc := NewSummaryService(NewQueryService(repo, quietLogger()), quietLogger())

		for _, month := range []string{"2024-13", "March", "2024/03"} {
			_, err := svc.GetMonthSummary(ctx, "user_1", month)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve, month)
			assert.Equal(t, MsgInvalidMonth, ve.Message)
		}
		repo.AssertNotCalled(t, "FindByUserInRange", mock.Anything, mock.Anything)
	})

	t.Run("Missing parameters", func(t *testing.T) {
		repo := new(mocks.MockTransactionRepository)
		svc := NewSummaryService(NewQueryService(repo, quietLogger()), quietLogger())

		_, err := svc.GetMonthSummary(ctx, "", "2024-02")
		assert.True(t, IsValidationError(err))

		_, err = svc.GetMonthSummary(ctx, "user_1", "")
		assert.True(t, IsValidationError(err))
	})

	t.Run("Upstream failure", func(t *testing.T) {
		repo := new(mocks.MockTransactionRepository)
		svc := NewSummaryService(NewQueryService(repo, quietLogger()), quietLogger())

		repo.On("FindByUserInRange", ctx, mock.Anything).Return(nil, errors.New("timeout")).Once()

		summary, err := svc.GetMonthSummary(ctx, "user_1", "2024-02")

		assert.Nil(t, summary)
		assert.True(t, IsUpstreamError(err))
	})
}
