package main

import (
	"context"
	"fmt"

	"github.com/damon-houk/finance-tracker/internal/config"
	"github.com/damon-houk/finance-tracker/internal/domain/repository"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/db"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
)

// transactionStore pairs the selected repository with its release function
type transactionStore struct {
	repo  repository.TransactionRepository
	close func() error
}

func (s *transactionStore) Close() {
	if s.close == nil {
		return
	}
	if err := s.close(); err != nil {
		logger.GetDefaultLogger().Error("Error closing transaction store", map[string]interface{}{"error": err.Error()})
	}
	s.close = nil
}

// openStore opens the backend named by cfg.DataBackend
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*transactionStore, error) {
	switch cfg.DataBackend {
	case config.BackendBadger:
		badgerDB, err := db.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		log.Info("Initialized badger backend", map[string]interface{}{"path": cfg.BadgerPath})
		return &transactionStore{repo: db.NewBadgerTransactionRepository(badgerDB), close: badgerDB.Close}, nil

	case config.BackendSQLite:
		repo, err := db.NewSQLiteTransactionRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, err
		}
		log.Info("Initialized sqlite backend", map[string]interface{}{"path": cfg.SQLiteDBPath})
		return &transactionStore{repo: repo, close: repo.Close}, nil

	case config.BackendAzTables:
		repo, err := db.NewTableTransactionRepository(ctx, cfg.TableServiceURL, cfg.TransactionsTable)
		if err != nil {
			return nil, err
		}
		log.Info("Initialized table storage backend", map[string]interface{}{
			"url":   cfg.TableServiceURL,
			"table": cfg.TransactionsTable,
		})
		return &transactionStore{repo: repo}, nil

	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}
