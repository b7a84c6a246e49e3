package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxDescriptionLength is the longest description accepted for a transaction
const MaxDescriptionLength = 200

// TransactionType tells income and expense records apart
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Category is the closed set of spending/earning categories
type Category string

const (
	CategoryFood           Category = "food"
	CategoryTransportation Category = "transportation"
	CategoryUtilities      Category = "utilities"
	CategoryEntertainment  Category = "entertainment"
	CategoryHealthcare     Category = "healthcare"
	CategoryShopping       Category = "shopping"
	CategoryHousing        Category = "housing"
	CategoryIncome         Category = "income"
	CategoryOther          Category = "other"
)

// Categories lists every category in display order
var Categories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryUtilities,
	CategoryEntertainment,
	CategoryHealthcare,
	CategoryShopping,
	CategoryHousing,
	CategoryIncome,
	CategoryOther,
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

var (
	ErrMissingUserID      = errors.New("user id is required")
	ErrMissingDescription = errors.New("description is required")
	ErrDescriptionTooLong = errors.New("description must not exceed 200 characters")
	ErrNegativeAmount     = errors.New("amount must not be negative")
	ErrInvalidType        = errors.New("type must be income or expense")
	ErrInvalidCategory    = errors.New("category is not recognised")
)

// Transaction represents a single income or expense record owned by one user
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Category    Category        `json:"category"`
	Date        time.Time       `json:"date"`
}

// Validate ensures the transaction meets all requirements
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrMissingUserID
	}

	if strings.TrimSpace(t.Description) == "" {
		return ErrMissingDescription
	}

	if len([]rune(t.Description)) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}

	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}

	if !t.Type.Valid() {
		return ErrInvalidType
	}

	if !t.Category.Valid() {
		return ErrInvalidCategory
	}

	return nil
}
