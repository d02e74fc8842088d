package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/studiflow/studiflow/internal/api/recovery"
)

// NewRouter registers all routes on a fresh mux router.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(recovery.Middleware)
	r.Use(RequestID(h.log))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/state", h.GetState).Methods(http.MethodGet)
	api.HandleFunc("/state", h.ResetState).Methods(http.MethodDelete)

	api.HandleFunc("/logs", h.CreateLog).Methods(http.MethodPost)
	api.HandleFunc("/logs/timer", h.CreateTimerLog).Methods(http.MethodPost)

	api.HandleFunc("/schedules", h.CreateSchedule).Methods(http.MethodPost)
	api.HandleFunc("/schedules/{id}", h.DeleteSchedule).Methods(http.MethodDelete)

	api.HandleFunc("/subjects", h.CreateSubject).Methods(http.MethodPost)
	api.HandleFunc("/subjects/{id}", h.UpdateSubject).Methods(http.MethodPatch)
	api.HandleFunc("/subjects/{id}", h.DeleteSubject).Methods(http.MethodDelete)

	api.HandleFunc("/user", h.UpdateUser).Methods(http.MethodPatch)

	api.HandleFunc("/chat", h.Chat).Methods(http.MethodPost)

	api.HandleFunc("/analytics/summary", h.AnalyticsSummary).Methods(http.MethodGet)

	api.HandleFunc("/identity", h.SetIdentity).Methods(http.MethodPost)
	api.HandleFunc("/identity", h.ClearIdentity).Methods(http.MethodDelete)

	api.HandleFunc("/health", h.CheckHealth).Methods(http.MethodGet)

	return r
}
