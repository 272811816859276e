package handler

import (
	"errors"
	"net/http"
	"strings"

	"social-dashboard/generator"
	"social-dashboard/model"

	"github.com/rs/zerolog/log"
)

type repliesRequest struct {
	PostContent string `json:"postContent"`
	Comment     string `json:"comment"`
}

type multiplyRequest struct {
	Content string `json:"content"`
}

// IdeasResponse carries parsed ideas.
type IdeasResponse struct {
	Ideas []model.PostIdea `json:"ideas"`
}

type RepliesResponse struct {
	Replies []string `json:"replies"`
}

type InsightsResponse struct {
	Insights string `json:"insights"`
}

// PlanResponse carries the plan and, per item, the draft to hand to the scheduler.
type PlanResponse struct {
	Plan   []model.StrategicPlanItem `json:"plan"`
	Drafts []model.PostDraft         `json:"drafts"`
}

func (h *DashboardHandler) requireGenerator(w http.ResponseWriter) bool {
	if h.generator == nil {
		SendJSONError(w, http.StatusServiceUnavailable, ErrGeneratorDisabled, "Set genai.api_key to enable AI features")
		return false
	}
	return true
}

// sendGeneratorError surfaces a failed generation as a notification and a JSON error.
func (h *DashboardHandler) sendGeneratorError(w http.ResponseWriter, err error) {
	if errors.Is(err, generator.ErrMissingBrandProfile) {
		SendJSONError(w, http.StatusBadRequest, err, "")
		return
	}

	message := err.Error()
	var genErr *generator.Error
	if errors.As(err, &genErr) {
		message = genErr.Message
	} else if errors.Is(err, generator.ErrMalformedPayload) {
		message = "The AI returned an unexpected response. Please try again."
	}
	h.store.ShowNotification(model.Failure(message))
	SendJSONError(w, http.StatusBadGateway, err, message)
}

// GenerateIdeas handles POST /api/ai/ideas
func (h *DashboardHandler) GenerateIdeas(w http.ResponseWriter, r *http.Request) {
	if !h.requireGenerator(w) {
		return
	}
	var req generator.IdeaRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		SendJSONError(w, http.StatusBadRequest, missing("topic"), "Please enter a topic.")
		return
	}
	if !req.Platform.Valid() {
		SendJSONError(w, http.StatusBadRequest, ErrInvalidPlatform, string(req.Platform))
		return
	}
	if req.Tone == "" {
		req.Tone = "Professional"
	}

	profile := h.store.Snapshot().BrandProfile
	raw, err := h.generator.ContentIdeas(r.Context(), req, &profile)
	if err != nil {
		h.sendGeneratorError(w, err)
		return
	}
	ideas, err := generator.ParseIdeas(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Unusable ideas payload")
		h.sendGeneratorError(w, err)
		return
	}
	SendJSONSuccess(w, http.StatusOK, IdeasResponse{Ideas: ideas})
}

// GenerateReplies handles POST /api/ai/replies
func (h *DashboardHandler) GenerateReplies(w http.ResponseWriter, r *http.Request) {
	if !h.requireGenerator(w) {
		return
	}
	var req repliesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Comment) == "" {
		SendJSONError(w, http.StatusBadRequest, missing("comment"), "")
		return
	}

	profile := h.store.Snapshot().BrandProfile
	raw, err := h.generator.CommentReply(r.Context(), req.PostContent, req.Comment, &profile)
	if err != nil {
		h.sendGeneratorError(w, err)
		return
	}
	replies, err := generator.ParseReplies(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Unusable replies payload")
		h.sendGeneratorError(w, err)
		return
	}
	SendJSONSuccess(w, http.StatusOK, RepliesResponse{Replies: replies})
}

// GenerateInsights handles POST /api/ai/insights over the current analytics series.
func (h *DashboardHandler) GenerateInsights(w http.ResponseWriter, r *http.Request) {
	if !h.requireGenerator(w) {
		return
	}

	st := h.store.Snapshot()
	data := model.AnalyticsData{FollowerData: st.FollowerData, EngagementData: st.EngagementData}

	text, err := h.generator.PerformanceInsights(r.Context(), data, &st.BrandProfile)
	if err != nil {
		h.sendGeneratorError(w, err)
		return
	}
	SendJSONSuccess(w, http.StatusOK, InsightsResponse{Insights: text})
}

// GeneratePlan handles POST /api/ai/plan
func (h *DashboardHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	if !h.requireGenerator(w) {
		return
	}

	st := h.store.Snapshot()
	raw, err := h.generator.StrategicPlan(r.Context(), st.BrandProfile, generator.SummarizePerformance(st.Posts))
	if err != nil {
		h.sendGeneratorError(w, err)
		return
	}
	plan, err := generator.ParsePlan(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Unusable plan payload")
		h.sendGeneratorError(w, err)
		return
	}

	drafts := make([]model.PostDraft, len(plan))
	for i, item := range plan {
		drafts[i] = item.Draft()
	}
	SendJSONSuccess(w, http.StatusOK, PlanResponse{Plan: plan, Drafts: drafts})
}

// MultiplyContent handles POST /api/ai/multiply
func (h *DashboardHandler) MultiplyContent(w http.ResponseWriter, r *http.Request) {
	if !h.requireGenerator(w) {
		return
	}
	var req multiplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		SendJSONError(w, http.StatusBadRequest, missing("content"), "Please paste your long-form content first.")
		return
	}

	raw, err := h.generator.MultiplyContent(r.Context(), req.Content, h.store.Snapshot().BrandProfile)
	if err != nil {
		h.sendGeneratorError(w, err)
		return
	}
	bundle, err := generator.ParseMultipliedContent(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Unusable multiplied content payload")
		h.sendGeneratorError(w, err)
		return
	}
	SendJSONSuccess(w, http.StatusOK, bundle)
}
