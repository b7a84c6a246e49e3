package handler

import (
	"errors"
	"net/http"

	"github.com/damon-houk/finance-tracker/internal/application/service"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// SummaryHandler serves monthly dashboard summaries
type SummaryHandler struct {
	service *service.SummaryService
	logger  logger.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(service *service.SummaryService, log logger.Logger) *SummaryHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &SummaryHandler{
		service: service,
		logger:  log,
	}
}

// GetMonthSummary handles GET /transactions/summary?month=YYYY-MM&userId
func (h *SummaryHandler) GetMonthSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	params := r.URL.Query()

	h.logger.Info("Handling month summary request", map[string]interface{}{
		"request_id": requestID,
		"month":      params.Get("month"),
	})

	summary, err := h.service.GetMonthSummary(r.Context(), params.Get("userId"), params.Get("month"))
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve) && ve.Message == service.MsgMissingParameters:
			sendErrorResponse(w, h.logger, "Missing required parameters",
				"month and userId are required", http.StatusBadRequest, requestID)
		case errors.As(err, &ve) && ve.Message == service.MsgInvalidUserID:
			sendErrorResponse(w, h.logger, "Invalid userId",
				"userId must not contain control characters or any of / \\ # ?", http.StatusBadRequest, requestID)
		case errors.As(err, &ve):
			sendErrorResponse(w, h.logger, "Invalid month",
				"month must use the YYYY-MM format", http.StatusBadRequest, requestID)
		default:
			h.logger.Error("Unexpected error in month summary", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			sendErrorResponse(w, h.logger, "Failed to fetch transactions",
				"The transaction store could not be queried", http.StatusInternalServerError, requestID)
		}
		return
	}

	writeJSON(w, http.StatusOK, newMonthSummaryResponse(summary))
}

// RegisterRoutes registers the summary route
func (h *SummaryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transactions/summary", h.GetMonthSummary).Methods(http.MethodGet)

	h.logger.Info("Summary routes registered", map[string]interface{}{
		"routes": []string{"GET /transactions/summary"},
	})
}
