package api

import (
	"net/http"

	"go.uber.org/zap"
)

// HandleCreatePost handles POST requests that create a new post
func (h *Handler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("handleCreatePost called", zap.String("request_id", RequestID(r.Context())))

	in, err := decodePostInput(w, r)
	if err != nil {
		h.writeStoreError(w, r, "create post", err)
		return
	}

	post, err := h.store.Create(r.Context(), in)
	if err != nil {
		h.writeStoreError(w, r, "create post", err)
		return
	}

	h.logger.Info("created post",
		zap.String("request_id", RequestID(r.Context())), zap.String("id", post.ID.Hex()))
	writeJSON(w, http.StatusOK, post)
}
