package handler

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/damon-houk/finance-tracker/internal/application/service"
	"github.com/damon-houk/finance-tracker/internal/domain/entity"
)

// CreateTransactionRequest represents the request body for creating a transaction.
// Amount may be a JSON number or a numeric string.
type CreateTransactionRequest struct {
	UserID      string          `json:"userId"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
}

// amountText returns the submitted amount as text; absent or null becomes ""
func (r CreateTransactionRequest) amountText() string {
	raw := bytes.TrimSpace(r.Amount)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw)
		}
		return s
	}

	return string(raw)
}

// toInput converts the body into the write service's input
func (r CreateTransactionRequest) toInput() service.CreateTransactionInput {
	return service.CreateTransactionInput{
		UserID:      r.UserID,
		Amount:      r.amountText(),
		Description: r.Description,
		Type:        r.Type,
		Category:    r.Category,
	}
}

// TransactionResponse represents a transaction in responses. Amount is written as a
// JSON number with the stored decimal digits.
type TransactionResponse struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
}

func newTransactionResponse(tx *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Amount:      json.Number(tx.Amount.String()),
		Description: tx.Description,
		Type:        string(tx.Type),
		Category:    string(tx.Category),
		Date:        tx.Date.UTC().Format(time.RFC3339Nano),
	}
}

func newTransactionListResponse(transactions []*entity.Transaction) []TransactionResponse {
	resp := make([]TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		resp = append(resp, newTransactionResponse(tx))
	}
	return resp
}

// PeriodPointResponse is one bar of the income-vs-expenses chart
type PeriodPointResponse struct {
	Label    string  `json:"label"`
	Income   float64 `json:"Income"`
	Expenses float64 `json:"Expenses"`
}

// CategoryValueResponse is one slice of the expense breakdown chart
type CategoryValueResponse struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MonthSummaryResponse represents the dashboard summary of one month
type MonthSummaryResponse struct {
	UserID            string                  `json:"userId"`
	Month             string                  `json:"month"`
	StartDate         string                  `json:"startDate"`
	EndDate           string                  `json:"endDate"`
	TotalIncome       float64                 `json:"totalIncome"`
	TotalExpenses     float64                 `json:"totalExpenses"`
	Net               float64                 `json:"net"`
	TransactionCount  int                     `json:"transactionCount"`
	PeriodSummary     []PeriodPointResponse   `json:"periodSummary"`
	CategoryBreakdown []CategoryValueResponse `json:"categoryBreakdown"`
}

func newMonthSummaryResponse(s *service.MonthSummary) MonthSummaryResponse {
	resp := MonthSummaryResponse{
		UserID:            s.UserID,
		Month:             s.Month,
		StartDate:         s.Start.Format(time.RFC3339Nano),
		EndDate:           s.End.Format(time.RFC3339Nano),
		TotalIncome:       s.TotalIncome.InexactFloat64(),
		TotalExpenses:     s.TotalExpenses.InexactFloat64(),
		Net:               s.Net.InexactFloat64(),
		TransactionCount:  s.Count,
		PeriodSummary:     make([]PeriodPointResponse, 0, len(s.PeriodSummary)),
		CategoryBreakdown: make([]CategoryValueResponse, 0, len(s.CategoryBreakdown)),
	}

	for _, p := range s.PeriodSummary {
		resp.PeriodSummary = append(resp.PeriodSummary, PeriodPointResponse{
			Label:    p.Label,
			Income:   p.Income.InexactFloat64(),
			Expenses: p.Expenses.InexactFloat64(),
		})
	}

	for _, c := range s.CategoryBreakdown {
		resp.CategoryBreakdown = append(resp.CategoryBreakdown, CategoryValueResponse{
			Name:  string(c.Name),
			Value: c.Value.InexactFloat64(),
		})
	}

	return resp
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// HealthResponse is returned by the liveness endpoint
type HealthResponse struct {
	Status string `json:"status"`
}
