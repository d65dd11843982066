package http

import (
	"net/http"

	"github.com/lakowalski/luxmedhunter/internal/delivery/http/handler"
	"github.com/lakowalski/luxmedhunter/internal/delivery/http/middleware"
	"github.com/lakowalski/luxmedhunter/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router                *mux.Router
	bookingHandler        *handler.BookingHandler
	searchCriteriaHandler *handler.SearchCriteriaHandler
	auditLogHandler       *handler.AuditLogHandler
	metricsHandler        http.Handler
	loggingMiddleware     *middleware.LoggingMiddleware
	corsMiddleware        *middleware.CORSMiddleware
}

// NewRouter builds the read-only status API. auditLogHandler may be nil when
// the audit trail is disabled.
func NewRouter(
	bookingHandler *handler.BookingHandler,
	searchCriteriaHandler *handler.SearchCriteriaHandler,
	auditLogHandler *handler.AuditLogHandler,
	metricsHandler http.Handler,
	loggingMiddleware *middleware.LoggingMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:                mux.NewRouter(),
		bookingHandler:        bookingHandler,
		searchCriteriaHandler: searchCriteriaHandler,
		auditLogHandler:       auditLogHandler,
		metricsHandler:        metricsHandler,
		loggingMiddleware:     loggingMiddleware,
		corsMiddleware:        corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// Health check
	r.router.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet, http.MethodOptions)

	// Prometheus
	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet, http.MethodOptions)
	}

	// Per-user state
	users := r.router.PathPrefix("/users/{userId}").Subrouter()
	users.HandleFunc("/bookings", r.bookingHandler.ListBookings).Methods(http.MethodGet, http.MethodOptions)
	users.HandleFunc("/search", r.searchCriteriaHandler.GetSearchCriteria).Methods(http.MethodGet, http.MethodOptions)
	if r.auditLogHandler != nil {
		users.HandleFunc("/audit", r.auditLogHandler.GetUserAuditLogs).Methods(http.MethodGet, http.MethodOptions)
	}

	r.router.Use(r.loggingMiddleware.Handle)
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.Success(w, http.StatusOK, "", nil)
}
