package events

import (
	"encoding/json"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
)

// TransactionCreatedMessage announces a newly stored transaction.
// Amount is carried as a decimal string so consumers keep exact values.
type TransactionCreatedMessage struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTransactionCreatedMessage builds the message for tx, stamped at now
func NewTransactionCreatedMessage(tx *entity.Transaction, now time.Time) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Amount:      tx.Amount.String(),
		Description: tx.Description,
		Type:        string(tx.Type),
		Category:    string(tx.Category),
		Date:        tx.Date.UTC(),
		Timestamp:   now.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionCreatedMessageFromJSON decodes a message published by AMQPPublisher
func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
