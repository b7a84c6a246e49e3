package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/repository"
	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

const (
	insertTransactionSQL = `
INSERT INTO transactions (id, user_id, amount, description, type, category, date)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, user_id, amount, description, type, category, date`

	findTransactionsSQL = `
SELECT id, user_id, amount, description, type, category, date
FROM transactions
WHERE user_id = ? AND date >= ? AND date <= ?
ORDER BY date DESC, id DESC`
)

// SQLiteTransactionRepository stores transactions in a SQLite table.
// Dates are kept as fixed-width UTC text so range filters and ORDER BY compare correctly.
type SQLiteTransactionRepository struct {
	db *sql.DB
}

// NewSQLiteTransactionRepository opens the database at dbPath and migrates it
func NewSQLiteTransactionRepository(dbPath string) (*SQLiteTransactionRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteTransactionRepository{db: db}, nil
}

// Close releases the database handle
func (r *SQLiteTransactionRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert writes one row and returns it as the database stored it
func (r *SQLiteTransactionRepository) Insert(ctx context.Context, tx *entity.Transaction) (*entity.Transaction, error) {
	stored := withNewID(tx)

	row := r.db.QueryRowContext(ctx, insertTransactionSQL,
		stored.ID,
		stored.UserID,
		stored.Amount.String(),
		stored.Description,
		string(stored.Type),
		string(stored.Category),
		formatSortable(stored.Date),
	)

	result, err := scanTransaction(row)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	return result, nil
}

// FindByUserInRange selects the user's rows inside the inclusive date range
func (r *SQLiteTransactionRepository) FindByUserInRange(ctx context.Context, q repository.RangeQuery) ([]*entity.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, findTransactionsSQL,
		q.UserID,
		formatSortable(q.Start),
		formatSortable(q.End),
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*entity.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (*entity.Transaction, error) {
	var (
		tx     entity.Transaction
		amount string
		kind   string
		cat    string
		date   string
	)

	if err := s.Scan(&tx.ID, &tx.UserID, &amount, &tx.Description, &kind, &cat, &date); err != nil {
		return nil, err
	}

	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}

	parsedDate, err := parseSortable(date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", date, err)
	}

	tx.Amount = parsedAmount
	tx.Type = entity.TransactionType(kind)
	tx.Category = entity.Category(cat)
	tx.Date = parsedDate

	return &tx, nil
}
