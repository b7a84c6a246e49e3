package db

import (
	"context"
	"testing"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

func newTx(userID, amount string, date time.Time) *entity.Transaction {
	return &entity.Transaction{
		UserID:      userID,
		Amount:      decimal.RequireFromString(amount),
		Description: "row " + amount,
		Type:        entity.TypeExpense,
		Category:    entity.CategoryFood,
		Date:        date,
	}
}

// runRepositoryContract checks the behaviour every TransactionRepository must share
func runRepositoryContract(t *testing.T, repo repository.TransactionRepository) {
	ctx := context.Background()

	fixtures := []*entity.Transaction{
		newTx("user_1", "1", time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC)),
		newTx("user_1", "2", at(1, 0)),
		newTx("user_1", "3", at(15, 12)),
		newTx("user_1", "4", at(15, 12)),
		newTx("user_1", "5", time.Date(2024, time.March, 31, 23, 59, 59, 999999999, time.UTC)),
		newTx("user_1", "6", time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)),
		newTx("user_2", "7", at(10, 9)),
	}

	ids := make(map[string]string)
	for _, f := range fixtures {
		stored, err := repo.Insert(ctx, f)
		require.NoError(t, err)
		require.NotEmpty(t, stored.ID)
		assert.Empty(t, f.ID, "input must not be mutated")
		assert.True(t, f.Amount.Equal(stored.Amount))
		assert.True(t, f.Date.Equal(stored.Date))
		ids[stored.Amount.String()] = stored.ID
	}

	t.Run("Inclusive range, newest first", func(t *testing.T) {
		rows, err := repo.FindByUserInRange(ctx, repository.RangeQuery{
			UserID: "user_1",
			Start:  at(1, 0),
			End:    time.Date(2024, time.March, 31, 23, 59, 59, 999999999, time.UTC),
		})
		require.NoError(t, err)
		require.Len(t, rows, 4)

		assert.Equal(t, "5", rows[0].Amount.String())
		assert.Equal(t, "2", rows[3].Amount.String())
		for i := 1; i < len(rows); i++ {
			assert.False(t, rows[i].Date.After(rows[i-1].Date), "rows must be ordered by date descending")
		}
		for _, row := range rows {
			assert.Equal(t, "user_1", row.UserID)
			assert.Equal(t, ids[row.Amount.String()], row.ID)
			assert.Equal(t, entity.TypeExpense, row.Type)
			assert.Equal(t, entity.CategoryFood, row.Category)
		}
	})

	t.Run("Other users are excluded", func(t *testing.T) {
		rows, err := repo.FindByUserInRange(ctx, repository.RangeQuery{
			UserID: "user_2",
			Start:  at(1, 0),
			End:    at(31, 0),
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "7", rows[0].Amount.String())
	})

	t.Run("Single instant", func(t *testing.T) {
		rows, err := repo.FindByUserInRange(ctx, repository.RangeQuery{
			UserID: "user_1",
			Start:  at(15, 12),
			End:    at(15, 12),
		})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("No rows", func(t *testing.T) {
		rows, err := repo.FindByUserInRange(ctx, repository.RangeQuery{
			UserID: "nobody",
			Start:  at(1, 0),
			End:    at(31, 0),
		})
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("Ids extending another user's key are not matched", func(t *testing.T) {
		_, err := repo.Insert(ctx, newTx("user_1"+keySeparator+formatSortable(at(20, 0)), "999", at(20, 0)))
		require.NoError(t, err)

		rows, err := repo.FindByUserInRange(ctx, repository.RangeQuery{
			UserID: "user_1",
			Start:  at(1, 0),
			End:    time.Date(2024, time.March, 31, 23, 59, 59, 999999999, time.UTC),
		})
		require.NoError(t, err)
		require.Len(t, rows, 4)
		for _, row := range rows {
			assert.Equal(t, "user_1", row.UserID)
			assert.NotEqual(t, "999", row.Amount.String())
		}
	})
}
