package handler

import (
	"net/http"

	"social-dashboard/model"

	"github.com/gorilla/mux"
)

type viewRequest struct {
	View model.View `json:"view"`
}

type sidebarRequest struct {
	Open bool `json:"open"`
}

type connectionRequest struct {
	Connected bool `json:"connected"`
}

// GetState handles GET /api/state
func (h *DashboardHandler) GetState(w http.ResponseWriter, r *http.Request) {
	h.sendState(w, http.StatusOK)
}

// SetView handles PUT /api/view
func (h *DashboardHandler) SetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.View.Valid() {
		SendJSONError(w, http.StatusBadRequest, ErrInvalidView, string(req.View))
		return
	}
	h.store.SetCurrentView(req.View)
	h.sendState(w, http.StatusOK)
}

// SetSidebar handles PUT /api/sidebar
func (h *DashboardHandler) SetSidebar(w http.ResponseWriter, r *http.Request) {
	var req sidebarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.store.SetSidebarOpen(req.Open)
	h.sendState(w, http.StatusOK)
}

// Launch handles POST /api/launch
func (h *DashboardHandler) Launch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	h.store.LaunchApp(ctx)
	h.sendState(w, http.StatusOK)
}

// StartOnboarding handles POST /api/onboarding/start
func (h *DashboardHandler) StartOnboarding(w http.ResponseWriter, r *http.Request) {
	h.store.StartOnboarding()
	h.sendState(w, http.StatusOK)
}

// CompleteOnboarding handles POST /api/onboarding/complete
func (h *DashboardHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	h.store.CompleteOnboarding(ctx)
	h.sendState(w, http.StatusOK)
}

// SaveBrandProfile handles PUT /api/brand-profile. Omitted fields take their defaults.
func (h *DashboardHandler) SaveBrandProfile(w http.ResponseWriter, r *http.Request) {
	profile := model.DefaultBrandProfile()
	if !decodeJSON(w, r, &profile) {
		return
	}
	if profile.BrandVoice == nil {
		profile.BrandVoice = []string{}
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	if err := h.store.SaveBrandProfile(ctx, profile); err != nil {
		h.sendStoreError(w, err)
		return
	}
	h.sendState(w, http.StatusOK)
}

// UpdateConnection handles PUT /api/connections/{platform}
func (h *DashboardHandler) UpdateConnection(w http.ResponseWriter, r *http.Request) {
	platform := model.Platform(mux.Vars(r)["platform"])
	if !platform.Valid() {
		SendJSONError(w, http.StatusBadRequest, ErrInvalidPlatform, string(platform))
		return
	}

	var req connectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	if err := h.store.UpdateConnectionStatus(ctx, platform, req.Connected); err != nil {
		h.sendStoreError(w, err)
		return
	}
	h.sendState(w, http.StatusOK)
}

// SchedulePost handles POST /api/handoff
func (h *DashboardHandler) SchedulePost(w http.ResponseWriter, r *http.Request) {
	var draft model.PostDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	if draft.Platform != "" && !draft.Platform.Valid() {
		SendJSONError(w, http.StatusBadRequest, ErrInvalidPlatform, string(draft.Platform))
		return
	}
	if draft.Day != "" && !draft.Day.Valid() {
		SendJSONError(w, http.StatusBadRequest, model.ErrInvalidDay, string(draft.Day))
		return
	}
	h.store.SchedulePost(draft)
	h.sendState(w, http.StatusOK)
}

// ClearHandoff handles DELETE /api/handoff
func (h *DashboardHandler) ClearHandoff(w http.ResponseWriter, r *http.Request) {
	h.store.ClearPostToSchedule()
	h.sendState(w, http.StatusOK)
}

// ClearNotification handles DELETE /api/notification
func (h *DashboardHandler) ClearNotification(w http.ResponseWriter, r *http.Request) {
	h.store.ClearNotification()
	h.sendState(w, http.StatusOK)
}
