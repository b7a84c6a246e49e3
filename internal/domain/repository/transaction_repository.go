package repository

import (
	"context"
	"errors"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
)

// ErrStoreUnavailable is wrapped by repositories when the backing store cannot serve a request
var ErrStoreUnavailable = errors.New("transaction store unavailable")

// RangeQuery selects one user's transactions with Start <= date <= End
type RangeQuery struct {
	UserID string
	Start  time.Time
	End    time.Time
}

// TransactionRepository defines the interface for transaction storage
type TransactionRepository interface {
	// Insert persists a new transaction, assigning its ID, and returns the stored row
	Insert(ctx context.Context, transaction *entity.Transaction) (*entity.Transaction, error)

	// FindByUserInRange returns the matching transactions ordered by date, newest first
	FindByUserInRange(ctx context.Context, query RangeQuery) ([]*entity.Transaction, error)
}
