package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

// Index keys look like "tx:<user>\x00<sortable date>\x00<id>" and hold the transaction JSON,
// so one reverse prefix scan answers a range query newest first.
const (
	badgerKeyPrefix = "tx:"
	keySeparator    = "\x00"
)

// BadgerTransactionRepository implements the transaction repository interface using BadgerDB
type BadgerTransactionRepository struct {
	db *badger.DB
}

// NewBadgerTransactionRepository creates a new BadgerDB transaction repository
func NewBadgerTransactionRepository(db *badger.DB) *BadgerTransactionRepository {
	return &BadgerTransactionRepository{db: db}
}

// OpenBadger opens (creating if needed) a BadgerDB at path with Badger's own logger disabled
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", path, err)
	}
	return db, nil
}

func userPrefix(userID string) []byte {
	return []byte(badgerKeyPrefix + userID + keySeparator)
}

func transactionKey(tx *entity.Transaction) []byte {
	return []byte(badgerKeyPrefix + tx.UserID + keySeparator + formatSortable(tx.Date) + keySeparator + tx.ID)
}

// Insert saves a transaction under a newly generated ID
func (r *BadgerTransactionRepository) Insert(ctx context.Context, tx *entity.Transaction) (*entity.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.db.IsClosed() {
		return nil, repository.ErrStoreUnavailable
	}

	stored := withNewID(tx)

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(transactionKey(stored), data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store transaction: %w", err)
	}

	return stored, nil
}

// FindByUserInRange walks the user's index backwards from End down to Start
func (r *BadgerTransactionRepository) FindByUserInRange(ctx context.Context, q repository.RangeQuery) ([]*entity.Transaction, error) {
	if r.db.IsClosed() {
		return nil, repository.ErrStoreUnavailable
	}

	prefix := userPrefix(q.UserID)
	lowest := string(prefix) + formatSortable(q.Start)
	// \xff sorts after the separator and any id, so Seek lands on the newest row at End
	seek := []byte(string(prefix) + formatSortable(q.End) + keySeparator + "\xff")

	transactions := make([]*entity.Transaction, 0)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			if string(item.Key()) < lowest {
				break
			}

			var tx entity.Transaction
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &tx)
			}); err != nil {
				return fmt.Errorf("failed to decode transaction %q: %w", item.Key(), err)
			}
			// an id containing the separator shares this user's prefix
			if tx.UserID != q.UserID {
				continue
			}
			transactions = append(transactions, &tx)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	return transactions, nil
}
