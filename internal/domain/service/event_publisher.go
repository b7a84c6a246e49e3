package service

import (
	"context"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
)

// EventPublisher defines the interface for announcing new transactions to other consumers
type EventPublisher interface {
	// PublishTransactionCreated announces a transaction that has just been stored
	PublishTransactionCreated(ctx context.Context, transaction *entity.Transaction) error
}
