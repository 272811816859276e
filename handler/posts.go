package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"social-dashboard/model"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func postID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidPostID
	}
	return id, nil
}

// ListPosts handles GET /api/posts
func (h *DashboardHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	SendJSONSuccess(w, http.StatusOK, h.store.Posts())
}

// CreatePost handles POST /api/posts. Only connected platforms accept new posts.
func (h *DashboardHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var draft model.PostDraft
	if !decodeJSON(w, r, &draft) {
		return
	}

	if draft.IsABTest {
		if draft.VariantA == nil || draft.VariantA.Content == "" {
			SendJSONError(w, http.StatusBadRequest, missing("variantA.content"), "")
			return
		}
		if draft.VariantB == nil || draft.VariantB.Content == "" {
			SendJSONError(w, http.StatusBadRequest, missing("variantB.content"), "")
			return
		}
	} else if draft.Content == "" {
		SendJSONError(w, http.StatusBadRequest, missing("content"), "")
		return
	}

	if draft.Platform.Valid() && !h.store.Snapshot().BrandProfile.Connected(draft.Platform) {
		SendJSONError(w, http.StatusBadRequest, ErrPlatformNotConnected, string(draft.Platform))
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	post, err := h.store.CreatePost(ctx, draft)
	if err != nil {
		h.sendStoreError(w, err)
		return
	}

	log.Info().
		Int64("post_id", post.ID).
		Str("platform", string(post.Platform)).
		Bool("ab_test", post.IsABTest()).
		Msg("Post scheduled")

	SendJSONSuccess(w, http.StatusCreated, post)
}

// UpdatePost handles PUT /api/posts/{id}
func (h *DashboardHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "")
		return
	}

	var post model.ScheduledPost
	if !decodeJSON(w, r, &post) {
		return
	}
	if post.ID == 0 {
		post.ID = id
	}
	if post.ID != id {
		SendJSONError(w, http.StatusBadRequest, ErrPostIDMismatch, fmt.Sprintf("path %d, body %d", id, post.ID))
		return
	}
	if !post.Platform.Valid() {
		SendJSONError(w, http.StatusBadRequest, ErrInvalidPlatform, string(post.Platform))
		return
	}
	if !post.Day.Valid() {
		SendJSONError(w, http.StatusBadRequest, model.ErrInvalidDay, string(post.Day))
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	if err := h.store.UpdatePost(ctx, post); err != nil {
		h.sendStoreError(w, err)
		return
	}
	SendJSONSuccess(w, http.StatusOK, h.store.Posts())
}

// ResolveABTest handles POST /api/posts/{id}/results
func (h *DashboardHandler) ResolveABTest(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		SendJSONError(w, http.StatusBadRequest, err, "")
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	post, err := h.store.ResolveABTest(ctx, id)
	if err != nil {
		h.sendStoreError(w, err)
		return
	}
	SendJSONSuccess(w, http.StatusOK, post)
}
