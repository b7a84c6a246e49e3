// Package dashboard loads the month view shown by the dashboard client
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/aggregation"
	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/api"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/cache"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
)

// ErrSuperseded is returned by Load when a newer Load started before this one finished.
// Its result is discarded.
var ErrSuperseded = errors.New("load superseded by a newer request")

// Source is the transactions API as seen by the dashboard
type Source interface {
	ListTransactions(ctx context.Context, userID string, start, end time.Time) ([]*entity.Transaction, error)
	CreateTransaction(ctx context.Context, tx api.NewTransaction) (*entity.Transaction, error)
}

// View is everything the dashboard renders for one user and month
type View struct {
	UserID       string
	Month        time.Time
	Transactions []*entity.Transaction
	aggregation.Summary
}

// Loader fetches month views. When loads overlap only the most recently started one
// may replace the current view.
type Loader struct {
	source Source
	cache  *cache.MonthCache
	logger logger.Logger

	mu      sync.Mutex
	latest  uint64
	current *View
}

// NewLoader creates a loader. A nil cache disables caching.
func NewLoader(source Source, monthCache *cache.MonthCache, log logger.Logger) *Loader {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Loader{
		source: source,
		cache:  monthCache,
		logger: log,
	}
}

// Current returns the last committed view, or nil before the first successful load
func (l *Loader) Current() *View {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Load fetches the month containing month (UTC) for userID and commits it as the current view
func (l *Loader) Load(ctx context.Context, userID string, month time.Time) (*View, error) {
	seq := l.begin()
	start, end := aggregation.MonthRange(month.UTC())

	var generation uint64
	if l.cache != nil {
		generation = l.cache.Generation(userID)
	}

	transactions, cached := l.lookup(userID, start)
	if !cached {
		var err error
		transactions, err = l.source.ListTransactions(ctx, userID, start, end)
		if err != nil {
			if !l.isLatest(seq) {
				return nil, ErrSuperseded
			}
			l.logger.Error("Failed to load month", map[string]interface{}{
				"user_id": userID,
				"month":   start.Format("2006-01"),
				"error":   err.Error(),
			})
			return nil, fmt.Errorf("load %s: %w", start.Format("2006-01"), err)
		}
	}

	view := &View{
		UserID:       userID,
		Month:        start,
		Transactions: transactions,
		Summary:      aggregation.Summarize(transactions, start),
	}

	if !l.commit(seq, view) {
		l.logger.Debug("Discarding superseded month load", map[string]interface{}{
			"user_id": userID,
			"month":   start.Format("2006-01"),
		})
		return nil, ErrSuperseded
	}

	// a Submit may have invalidated the user while this load was in flight
	if !cached && l.cache != nil && !l.cache.PutAt(userID, start, generation, transactions) {
		l.logger.Debug("Not caching month read before invalidation", map[string]interface{}{
			"user_id": userID,
			"month":   start.Format("2006-01"),
		})
	}

	return view, nil
}

// Submit creates a transaction, drops the user's cached months and reloads month
func (l *Loader) Submit(ctx context.Context, tx api.NewTransaction, month time.Time) (*entity.Transaction, *View, error) {
	created, err := l.source.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, nil, fmt.Errorf("submit transaction: %w", err)
	}

	if l.cache != nil {
		l.cache.Invalidate(tx.UserID)
	}

	view, err := l.Load(ctx, tx.UserID, month)
	if err != nil {
		return created, nil, err
	}
	return created, view, nil
}

func (l *Loader) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.latest++
	return l.latest
}

func (l *Loader) isLatest(seq uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return seq == l.latest
}

func (l *Loader) commit(seq uint64, view *View) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.latest {
		return false
	}
	l.current = view
	return true
}

func (l *Loader) lookup(userID string, month time.Time) ([]*entity.Transaction, bool) {
	if l.cache == nil {
		return nil, false
	}

	if evicted := l.cache.CleanExpired(); evicted > 0 {
		l.logger.Debug("Evicted expired months", map[string]interface{}{
			"evicted":   evicted,
			"remaining": l.cache.Size(),
		})
	}
	return l.cache.Get(userID, month)
}
