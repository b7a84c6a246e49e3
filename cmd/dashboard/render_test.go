package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/damon-houk/finance-tracker/internal/application/dashboard"
	"github.com/damon-houk/finance-tracker/internal/domain/aggregation"
	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/api"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	month := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	transactions := []*entity.Transaction{
		{ID: "2", Amount: decimal.RequireFromString("80"), Description: "Groceries", Type: entity.TypeExpense, Category: entity.CategoryFood, Date: month.AddDate(0, 0, 14)},
		{ID: "1", Amount: decimal.RequireFromString("1000.5"), Description: "Salary", Type: entity.TypeIncome, Category: entity.CategoryIncome, Date: month},
	}
	view := &dashboard.View{
		UserID:       "user_1",
		Month:        month,
		Transactions: transactions,
		Summary:      aggregation.Summarize(transactions, month),
	}

	var out bytes.Buffer
	require.NoError(t, render(&out, view))

	text := out.String()
	assert.Contains(t, text, "February 2024")
	assert.Regexp(t, `Total income\s+1000\.50`, text)
	assert.Regexp(t, `Total expenses\s+80\.00`, text)
	assert.Regexp(t, `Net\s+920\.50`, text)
	assert.Regexp(t, `Food\s+80\.00`, text)
	assert.NotContains(t, text, "No expenses recorded")
}

func TestRenderEmptyMonth(t *testing.T) {
	month := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	view := &dashboard.View{
		UserID:  "user_1",
		Month:   month,
		Summary: aggregation.Summarize(nil, month),
	}

	var out bytes.Buffer
	require.NoError(t, render(&out, view))

	assert.Contains(t, out.String(), "No expenses recorded")
	assert.Regexp(t, `Net\s+0\.00`, out.String())
	assert.NotContains(t, out.String(), "Transactions")
}

func TestCompareSummary(t *testing.T) {
	month := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	transactions := []*entity.Transaction{
		{ID: "1", Amount: decimal.RequireFromString("80"), Type: entity.TypeExpense, Category: entity.CategoryFood, Date: month},
		{ID: "2", Amount: decimal.RequireFromString("1000"), Type: entity.TypeIncome, Category: entity.CategoryIncome, Date: month},
	}
	view := &dashboard.View{UserID: "user_1", Month: month, Summary: aggregation.Summarize(transactions, month)}

	matching := &api.MonthSummary{
		TotalIncome:       decimal.RequireFromString("1000.00"),
		TotalExpenses:     decimal.RequireFromString("80"),
		Net:               decimal.RequireFromString("920"),
		TransactionCount:  2,
		CategoryBreakdown: []api.CategoryValue{{Name: "food", Value: decimal.RequireFromString("80")}},
	}
	assert.Empty(t, compareSummary(view, matching))

	stale := *matching
	stale.TotalExpenses = decimal.RequireFromString("85.25")
	stale.TransactionCount = 3
	stale.CategoryBreakdown = []api.CategoryValue{
		{Name: "food", Value: decimal.RequireFromString("80")},
		{Name: "shopping", Value: decimal.RequireFromString("5.25")},
	}

	mismatches := compareSummary(view, &stale)
	fields := make([]string, 0, len(mismatches))
	for _, m := range mismatches {
		fields = append(fields, m.Field)
	}
	assert.ElementsMatch(t, []string{"total expenses", "transaction count", "category shopping"}, fields)

	var out bytes.Buffer
	renderMismatches(&out, mismatches)
	assert.Regexp(t, `total expenses\s+80\s+85\.25`, out.String())
}
