package handler

import (
	"net/http"

	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/middleware"
	"github.com/gorilla/mux"
)

// NewRouter wires the middleware chain, the health check and the given handlers
func NewRouter(log logger.Logger, transactions *TransactionHandler, summary *SummaryHandler) *mux.Router {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggingMiddleware(log))

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}).Methods(http.MethodGet)

	// summary goes first so the literal path is matched before any pattern routes
	if summary != nil {
		summary.RegisterRoutes(router)
	}
	if transactions != nil {
		transactions.RegisterRoutes(router)
	}

	return router
}
