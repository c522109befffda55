package api

import (
	"net/http"

	"go.uber.org/zap"
)

// HandleAllPosts handles GET requests that list every post
func (h *Handler) HandleAllPosts(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("handleAllPosts called", zap.String("request_id", RequestID(r.Context())))

	posts, err := h.store.FindAll(r.Context())
	if err != nil {
		h.writeStoreError(w, r, "list posts", err)
		return
	}

	h.logger.Info("found posts",
		zap.String("request_id", RequestID(r.Context())), zap.Int("count", len(posts)))
	writeJSON(w, http.StatusOK, posts)
}
