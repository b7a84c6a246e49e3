package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const (
	// Standard Azurite account name and key
	azuriteAccountName = "devstoreaccount1"
	azuriteAccountKey  = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="
)

// tableClient is the part of *aztables.Client the repository uses
type tableClient interface {
	AddEntity(ctx context.Context, entity []byte, options *aztables.AddEntityOptions) (aztables.AddEntityResponse, error)
	NewListEntitiesPager(listOptions *aztables.ListEntitiesOptions) *runtime.Pager[aztables.ListEntitiesResponse]
}

// TableTransactionRepository stores transactions in Azure Table Storage.
// PartitionKey is the user id; RowKey starts with an inverted timestamp so the service's
// natural ascending RowKey order is newest first and date ranges become RowKey ranges.
type TableTransactionRepository struct {
	client tableClient
}

// NewTableTransactionRepository connects to the table service at serviceURL and makes sure
// the table exists. http:// URLs are treated as a local Azurite emulator.
func NewTableTransactionRepository(ctx context.Context, serviceURL, tableName string) (*TableTransactionRepository, error) {
	var (
		service *aztables.ServiceClient
		err     error
	)

	if strings.HasPrefix(serviceURL, "http://") {
		cred, credErr := aztables.NewSharedKeyCredential(azuriteAccountName, azuriteAccountKey)
		if credErr != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", credErr)
		}
		service, err = aztables.NewServiceClientWithSharedKey(serviceURL, cred, nil)
	} else {
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", credErr)
		}
		service, err = aztables.NewServiceClient(serviceURL, cred, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create table service client: %w", err)
	}

	if _, err := service.CreateTable(ctx, tableName, nil); err != nil {
		var azErr *azcore.ResponseError
		if !errors.As(err, &azErr) || azErr.ErrorCode != "TableAlreadyExists" {
			return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
		}
	}

	return &TableTransactionRepository{client: service.NewClient(tableName)}, nil
}

var (
	minTickTime = time.Unix(0, 0)
	maxTickTime = time.Unix(0, math.MaxInt64)
)

// invertedTicks maps later times to lexically smaller strings. Times outside the
// UnixNano range are clamped to its ends.
func invertedTicks(t time.Time) string {
	switch {
	case t.Before(minTickTime):
		t = minTickTime
	case t.After(maxTickTime):
		t = maxTickTime
	}
	return fmt.Sprintf("%019d", math.MaxInt64-t.UnixNano())
}

func rowKey(tx *entity.Transaction) string {
	return invertedTicks(tx.Date) + "_" + tx.ID
}

func quoteOData(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Insert adds the transaction as a new entity
func (r *TableTransactionRepository) Insert(ctx context.Context, tx *entity.Transaction) (*entity.Transaction, error) {
	stored := withNewID(tx)

	// Date stays a string: Edm.DateTime would truncate to 100ns ticks
	payload, err := json.Marshal(map[string]any{
		"PartitionKey": stored.UserID,
		"RowKey":       rowKey(stored),
		"ID":           stored.ID,
		"Amount":       stored.Amount.String(),
		"Description":  stored.Description,
		"Type":         string(stored.Type),
		"Category":     string(stored.Category),
		"Date":         stored.Date.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}

	if _, err := r.client.AddEntity(ctx, payload, nil); err != nil {
		return nil, fmt.Errorf("failed to add entity: %w", err)
	}

	return stored, nil
}

// FindByUserInRange lists the user's partition between the two inverted-time bounds
func (r *TableTransactionRepository) FindByUserInRange(ctx context.Context, q repository.RangeQuery) ([]*entity.Transaction, error) {
	// Newest bound first: End has the smallest inverted key
	filter := fmt.Sprintf("PartitionKey eq %s and RowKey ge %s and RowKey lt %s",
		quoteOData(q.UserID),
		quoteOData(invertedTicks(q.End)),
		quoteOData(invertedTicks(q.Start)+"`"),
	)

	pager := r.client.NewListEntitiesPager(&aztables.ListEntitiesOptions{
		Filter: &filter,
	})

	transactions := make([]*entity.Transaction, 0)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list entities: %w", err)
		}

		for _, raw := range resp.Entities {
			tx, err := decodeEntity(raw)
			if err != nil {
				return nil, err
			}
			if tx.UserID != q.UserID || tx.Date.Before(q.Start) || tx.Date.After(q.End) {
				continue
			}
			transactions = append(transactions, tx)
		}
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		if transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].ID > transactions[j].ID
		}
		return transactions[i].Date.After(transactions[j].Date)
	})

	return transactions, nil
}

func decodeEntity(raw []byte) (*entity.Transaction, error) {
	var parsed map[string]any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode entity: %w", err)
	}

	getString := func(key string) string {
		if v, ok := parsed[key].(string); ok {
			return v
		}
		return ""
	}

	amount := decimal.Zero
	switch v := parsed["Amount"].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", v, err)
		}
		amount = d
	case float64:
		amount = decimal.NewFromFloat(v)
	}

	date, err := time.Parse(time.RFC3339Nano, getString("Date"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}

	return &entity.Transaction{
		ID:          getString("ID"),
		UserID:      getString("PartitionKey"),
		Amount:      amount,
		Description: getString("Description"),
		Type:        entity.TransactionType(getString("Type")),
		Category:    entity.Category(getString("Category")),
		Date:        date.UTC(),
	}, nil
}
