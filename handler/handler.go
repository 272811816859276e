package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"social-dashboard/cache"
	"social-dashboard/generator"
	"social-dashboard/metrics"
	"social-dashboard/store"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// Options wires the dashboard handler to its collaborators. Generator, Cache and Ping
// are optional.
type Options struct {
	Store     *store.Store
	Generator *generator.Client
	Cache     *cache.Cache

	// Ping checks the durable backend for /health.
	Ping func(ctx context.Context) error

	ReferralLink     string
	OperationTimeout time.Duration
}

// DashboardHandler exposes the state store and the content generators over JSON.
type DashboardHandler struct {
	store        *store.Store
	generator    *generator.Client
	cache        *cache.Cache
	ping         func(ctx context.Context) error
	referralLink string
	timeout      time.Duration
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(opts Options) *DashboardHandler {
	timeout := opts.OperationTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DashboardHandler{
		store:        opts.Store,
		generator:    opts.Generator,
		cache:        opts.Cache,
		ping:         opts.Ping,
		referralLink: opts.ReferralLink,
		timeout:      timeout,
	}
}

// Register mounts every route on r.
func (h *DashboardHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/cache/metrics", h.CacheMetrics).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/state", h.GetState).Methods("GET")
	api.HandleFunc("/view", h.SetView).Methods("PUT")
	api.HandleFunc("/sidebar", h.SetSidebar).Methods("PUT")
	api.HandleFunc("/launch", h.Launch).Methods("POST")
	api.HandleFunc("/onboarding/start", h.StartOnboarding).Methods("POST")
	api.HandleFunc("/onboarding/complete", h.CompleteOnboarding).Methods("POST")
	api.HandleFunc("/brand-profile", h.SaveBrandProfile).Methods("PUT")
	api.HandleFunc("/connections/{platform}", h.UpdateConnection).Methods("PUT")
	api.HandleFunc("/handoff", h.SchedulePost).Methods("POST")
	api.HandleFunc("/handoff", h.ClearHandoff).Methods("DELETE")
	api.HandleFunc("/notification", h.ClearNotification).Methods("DELETE")

	api.HandleFunc("/posts", h.ListPosts).Methods("GET")
	api.HandleFunc("/posts", h.CreatePost).Methods("POST")
	api.HandleFunc("/posts/{id}", h.UpdatePost).Methods("PUT")
	api.HandleFunc("/posts/{id}/results", h.ResolveABTest).Methods("POST")

	api.HandleFunc("/analytics", h.UpdateAnalytics).Methods("PUT")
	api.HandleFunc("/analytics/refresh", h.RefreshAnalytics).Methods("POST")

	api.HandleFunc("/referral", h.Referral).Methods("GET")
	api.HandleFunc("/referral/qr", h.ReferralQR).Methods("GET")

	api.HandleFunc("/ai/ideas", h.GenerateIdeas).Methods("POST")
	api.HandleFunc("/ai/replies", h.GenerateReplies).Methods("POST")
	api.HandleFunc("/ai/insights", h.GenerateInsights).Methods("POST")
	api.HandleFunc("/ai/plan", h.GeneratePlan).Methods("POST")
	api.HandleFunc("/ai/multiply", h.MultiplyContent).Methods("POST")
}

// HealthCheck handles GET /health
func (h *DashboardHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	backend := "memory"
	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			log.Error().Err(err).Msg("Storage health check failed")
			SendJSONSuccess(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "unhealthy",
				"storage": "unavailable",
			})
			return
		}
		backend = "connected"
	}

	generatorStatus := "disabled"
	if h.generator != nil {
		generatorStatus = "enabled"
	}

	SendJSONSuccess(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"storage":   backend,
		"generator": generatorStatus,
	})
}

// CacheMetrics handles GET /cache/metrics
func (h *DashboardHandler) CacheMetrics(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		SendJSONError(w, http.StatusServiceUnavailable, ErrCacheDisabled, "")
		return
	}
	SendJSONSuccess(w, http.StatusOK, h.cache.GetMetricsSnapshot())
}

// withTimeout bounds a store action that writes to the backend.
func (h *DashboardHandler) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Invalid request body")
		SendJSONError(w, http.StatusBadRequest, ErrInvalidJSON, err.Error())
		return false
	}
	return true
}

// sendStoreError maps a failed store action to a status. Persistence failures carry
// the notification the store raised.
func (h *DashboardHandler) sendStoreError(w http.ResponseWriter, err error) {
	switch {
	case store.IsUserError(err):
		SendJSONError(w, http.StatusBadRequest, err, "")
	case errors.Is(err, store.ErrPostNotFound):
		SendJSONError(w, http.StatusNotFound, err, "")
	case errors.Is(err, context.DeadlineExceeded):
		SendJSONError(w, http.StatusGatewayTimeout, err, "")
	default:
		message := ""
		if n := h.store.Snapshot().Notification; n != nil {
			message = n.Message
		}
		SendJSONError(w, http.StatusInternalServerError, err, message)
	}
}

func (h *DashboardHandler) sendState(w http.ResponseWriter, status int) {
	SendJSONSuccess(w, status, h.store.Snapshot())
}

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}
