package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"social-dashboard/model"
	"social-dashboard/store"
	"social-dashboard/validator"

	"github.com/rs/zerolog/log"
)

// analyticsRequest keeps the series raw so they can be checked with the same
// validators used for persisted records.
type analyticsRequest struct {
	FollowerData   json.RawMessage `json:"followerData"`
	EngagementData json.RawMessage `json:"engagementData"`
}

func decodeSeries(raw json.RawMessage, validate validator.Func, target interface{}) error {
	var parsed interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return err
	}
	if err := validate(parsed); err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

// UpdateAnalytics handles PUT /api/analytics. Both series are required and replaced together.
func (h *DashboardHandler) UpdateAnalytics(w http.ResponseWriter, r *http.Request) {
	var req analyticsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.FollowerData) == 0 {
		SendJSONError(w, http.StatusBadRequest, missing("followerData"), "")
		return
	}
	if len(req.EngagementData) == 0 {
		SendJSONError(w, http.StatusBadRequest, missing("engagementData"), "")
		return
	}

	var data model.AnalyticsData
	if err := decodeSeries(req.FollowerData, validator.FollowerSeries, &data.FollowerData); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "followerData")
		return
	}
	if err := decodeSeries(req.EngagementData, validator.EngagementSeries, &data.EngagementData); err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "engagementData")
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	if err := h.store.UpdateAnalyticsData(ctx, data); err != nil {
		h.sendStoreError(w, err)
		return
	}
	h.sendState(w, http.StatusOK)
}

// RefreshAnalytics handles POST /api/analytics/refresh. The response is sent once the
// refresh has been applied; concurrent requests share one refresh.
func (h *DashboardHandler) RefreshAnalytics(w http.ResponseWriter, r *http.Request) {
	err := h.store.RefreshAnalytics(r.Context())
	switch {
	case err == nil:
		h.sendState(w, http.StatusOK)
	case errors.Is(err, store.ErrRefreshCancelled), errors.Is(err, store.ErrClosed):
		SendJSONError(w, http.StatusServiceUnavailable, err, "Server is shutting down")
	case errors.Is(err, context.Canceled):
		log.Debug().Msg("Client left before analytics refresh finished")
	default:
		h.sendStoreError(w, err)
	}
}
