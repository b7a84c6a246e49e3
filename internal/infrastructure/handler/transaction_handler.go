package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/damon-houk/finance-tracker/internal/application/service"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// maxBodyBytes bounds the size of a create request body
const maxBodyBytes = 1 << 20

// TransactionHandler handles HTTP requests for transactions
type TransactionHandler struct {
	query  *service.QueryService
	write  *service.WriteService
	logger logger.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(query *service.QueryService, write *service.WriteService, log logger.Logger) *TransactionHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &TransactionHandler{
		query:  query,
		write:  write,
		logger: log,
	}
}

// ListTransactions handles GET /transactions?startDate&endDate&userId
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	params := r.URL.Query()

	h.logger.Info("Handling list transactions request", map[string]interface{}{
		"request_id": requestID,
		"method":     r.Method,
		"path":       r.URL.Path,
	})

	transactions, err := h.query.ListTransactions(r.Context(), service.ListTransactionsInput{
		StartDate: params.Get("startDate"),
		EndDate:   params.Get("endDate"),
		UserID:    params.Get("userId"),
	})
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve) && ve.Message == service.MsgMissingParameters:
			sendErrorResponse(w, h.logger, "Missing required parameters",
				"startDate, endDate and userId are required", http.StatusBadRequest, requestID)
		case errors.As(err, &ve) && ve.Message == service.MsgInvalidUserID:
			sendErrorResponse(w, h.logger, "Invalid userId",
				"userId must not contain control characters or any of / \\ # ?", http.StatusBadRequest, requestID)
		case errors.As(err, &ve):
			sendErrorResponse(w, h.logger, "Invalid date range",
				"startDate and endDate must be timestamps with startDate <= endDate", http.StatusBadRequest, requestID)
		default:
			h.logger.Error("Unexpected error in list transactions", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Failed to fetch transactions",
				"The transaction store could not be queried", http.StatusInternalServerError, requestID)
		}
		return
	}

	writeJSON(w, http.StatusOK, newTransactionListResponse(transactions))
}

// CreateTransaction handles POST /transactions
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	h.logger.Info("Handling create transaction request", map[string]interface{}{
		"request_id": requestID,
		"method":     r.Method,
		"path":       r.URL.Path,
	})

	var req CreateTransactionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		sendErrorResponse(w, h.logger, "Invalid request body",
			"The request body could not be parsed as valid JSON", http.StatusBadRequest, requestID)
		return
	}

	tx, err := h.write.CreateTransaction(r.Context(), req.toInput())
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve) && ve.Message == service.MsgMissingFields:
			sendErrorResponse(w, h.logger, "Missing required fields",
				"userId, amount, description, type and category are required", http.StatusBadRequest, requestID)
		case errors.As(err, &ve):
			sendErrorResponse(w, h.logger, "Invalid transaction fields",
				ve.Error(), http.StatusBadRequest, requestID)
		default:
			h.logger.Error("Unexpected error in create transaction", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Failed to add transaction",
				"The transaction could not be stored", http.StatusInternalServerError, requestID)
		}
		return
	}

	writeJSON(w, http.StatusCreated, newTransactionResponse(tx))
}

// RegisterRoutes registers the transaction handler routes
func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
	router.HandleFunc("/transactions", h.CreateTransaction).Methods(http.MethodPost)

	h.logger.Info("Transaction routes registered", map[string]interface{}{
		"routes": []string{
			"GET /transactions",
			"POST /transactions",
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	writeJSON(w, statusCode, ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	})
}
