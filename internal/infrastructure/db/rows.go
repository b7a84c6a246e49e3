package db

import (
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/google/uuid"
)

// sortableTimeLayout is fixed width, so lexical order of formatted UTC times is chronological
const sortableTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatSortable(t time.Time) string {
	return t.UTC().Format(sortableTimeLayout)
}

func parseSortable(s string) (time.Time, error) {
	return time.Parse(sortableTimeLayout, s)
}

// withNewID copies tx and assigns a fresh identifier; the caller's value is left untouched
func withNewID(tx *entity.Transaction) *entity.Transaction {
	stored := *tx
	stored.ID = uuid.New().String()
	stored.Date = stored.Date.UTC()
	return &stored
}
