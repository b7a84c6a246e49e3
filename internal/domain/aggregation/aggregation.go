// Package aggregation reduces one period's transactions into dashboard figures.
package aggregation

import (
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PeriodPoint is one bar of the income-vs-expenses series
type PeriodPoint struct {
	Label    string
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// CategoryValue is one slice of the expense breakdown
type CategoryValue struct {
	Name  entity.Category
	Value decimal.Decimal
}

// Summary holds everything the dashboard shows for a period
type Summary struct {
	TotalIncome       decimal.Decimal
	TotalExpenses     decimal.Decimal
	Net               decimal.Decimal
	PeriodSummary     []PeriodPoint
	CategoryBreakdown []CategoryValue
	Count             int
}

// TotalIncome sums the amounts of income transactions
func TotalIncome(transactions []*entity.Transaction) decimal.Decimal {
	return sumByType(transactions, entity.TypeIncome)
}

// TotalExpenses sums the amounts of expense transactions
func TotalExpenses(transactions []*entity.Transaction) decimal.Decimal {
	return sumByType(transactions, entity.TypeExpense)
}

func sumByType(transactions []*entity.Transaction, kind entity.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		if tx != nil && tx.Type == kind {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// CategoryBreakdown groups expense amounts by category, keeping the order in which
// categories were first seen. The result is never nil.
func CategoryBreakdown(transactions []*entity.Transaction) []CategoryValue {
	breakdown := make([]CategoryValue, 0)
	index := make(map[entity.Category]int)

	for _, tx := range transactions {
		if tx == nil || tx.Type != entity.TypeExpense {
			continue
		}

		i, seen := index[tx.Category]
		if !seen {
			index[tx.Category] = len(breakdown)
			breakdown = append(breakdown, CategoryValue{Name: tx.Category, Value: tx.Amount})
			continue
		}
		breakdown[i].Value = breakdown[i].Value.Add(tx.Amount)
	}

	return breakdown
}

// PeriodLabel is the short month name used to label the selected period
func PeriodLabel(selected time.Time) string {
	return selected.Format("Jan")
}

// Summarize computes the full dashboard summary for the period containing selected
func Summarize(transactions []*entity.Transaction, selected time.Time) Summary {
	income := TotalIncome(transactions)
	expenses := TotalExpenses(transactions)

	count := 0
	for _, tx := range transactions {
		if tx != nil {
			count++
		}
	}

	return Summary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		Net:           income.Sub(expenses),
		PeriodSummary: []PeriodPoint{{
			Label:    PeriodLabel(selected),
			Income:   income,
			Expenses: expenses,
		}},
		CategoryBreakdown: CategoryBreakdown(transactions),
		Count:             count,
	}
}

// MonthRange returns the first and last instant of the month containing t, in t's location
func MonthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}
