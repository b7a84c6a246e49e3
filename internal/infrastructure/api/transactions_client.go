package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
)

const (
	transactionsPath = "/transactions"
	summaryPath      = "/transactions/summary"
)

// APIError is a non-2xx answer from the transactions API
type APIError struct {
	StatusCode  int
	Message     string
	Description string
	RequestID   string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("API returned %d: %s (%s)", e.StatusCode, e.Message, e.Description)
	}
	return fmt.Sprintf("API returned %d: %s", e.StatusCode, e.Message)
}

// NewTransaction is the payload of CreateTransaction
type NewTransaction struct {
	UserID      string
	Amount      decimal.Decimal
	Description string
	Type        entity.TransactionType
	Category    entity.Category
}

// PeriodPoint is one bar of a month summary
type PeriodPoint struct {
	Label    string          `json:"label"`
	Income   decimal.Decimal `json:"Income"`
	Expenses decimal.Decimal `json:"Expenses"`
}

// CategoryValue is one slice of a month summary
type CategoryValue struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// MonthSummary is the server-side summary of one month
type MonthSummary struct {
	UserID            string          `json:"userId"`
	Month             string          `json:"month"`
	TotalIncome       decimal.Decimal `json:"totalIncome"`
	TotalExpenses     decimal.Decimal `json:"totalExpenses"`
	Net               decimal.Decimal `json:"net"`
	TransactionCount  int             `json:"transactionCount"`
	PeriodSummary     []PeriodPoint   `json:"periodSummary"`
	CategoryBreakdown []CategoryValue `json:"categoryBreakdown"`
}

type createTransactionBody struct {
	UserID      string      `json:"userId"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"description"`
	RequestID   string `json:"request_id"`
}

// TransactionsClient talks to the finance tracker HTTP API. Requests are not retried.
type TransactionsClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewTransactionsClient creates a client for the API at baseURL
func NewTransactionsClient(baseURL string, httpClient *http.Client, log logger.Logger) *TransactionsClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &TransactionsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     log,
	}
}

// ListTransactions fetches the user's transactions with start <= date <= end, newest first
func (c *TransactionsClient) ListTransactions(ctx context.Context, userID string, start, end time.Time) ([]*entity.Transaction, error) {
	query := url.Values{
		"startDate": {start.UTC().Format(time.RFC3339Nano)},
		"endDate":   {end.UTC().Format(time.RFC3339Nano)},
		"userId":    {userID},
	}

	var transactions []*entity.Transaction
	if err := c.do(ctx, http.MethodGet, transactionsPath+"?"+query.Encode(), nil, http.StatusOK, &transactions); err != nil {
		return nil, err
	}

	if transactions == nil {
		transactions = []*entity.Transaction{}
	}
	return transactions, nil
}

// CreateTransaction submits one transaction and returns it as stored
func (c *TransactionsClient) CreateTransaction(ctx context.Context, tx NewTransaction) (*entity.Transaction, error) {
	body, err := json.Marshal(createTransactionBody{
		UserID:      tx.UserID,
		Amount:      json.Number(tx.Amount.String()),
		Description: tx.Description,
		Type:        string(tx.Type),
		Category:    string(tx.Category),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var created entity.Transaction
	if err := c.do(ctx, http.MethodPost, transactionsPath, body, http.StatusCreated, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// MonthSummary fetches the server-computed summary of month (YYYY-MM)
func (c *TransactionsClient) MonthSummary(ctx context.Context, userID, month string) (*MonthSummary, error) {
	query := url.Values{
		"month":  {month},
		"userId": {userID},
	}

	var summary MonthSummary
	if err := c.do(ctx, http.MethodGet, summaryPath+"?"+query.Encode(), nil, http.StatusOK, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *TransactionsClient) do(ctx context.Context, method, path string, body []byte, want int, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("Transactions API response", map[string]interface{}{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	})

	if resp.StatusCode != want {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var parsed errorBody
		if json.Unmarshal(bodyBytes, &parsed) == nil && parsed.Error != "" {
			apiErr.Message = parsed.Error
			apiErr.Description = parsed.Description
			apiErr.RequestID = parsed.RequestID
		}
		return apiErr
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
