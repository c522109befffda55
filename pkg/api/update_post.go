package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/adfharrison1/go-blog/pkg/domain"
)

// HandleUpdatePost handles PUT requests that replace the title and body of a post
func (h *Handler) HandleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.logger.Info("handleUpdatePost called",
		zap.String("request_id", RequestID(r.Context())), zap.String("id", id))

	// Reject a bad id before reading the body
	if _, err := domain.ParseID(id); err != nil {
		h.writeStoreError(w, r, "update post", err)
		return
	}

	in, err := decodePostInput(w, r)
	if err != nil {
		h.writeStoreError(w, r, "update post", err)
		return
	}

	post, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		h.writeStoreError(w, r, "update post", err)
		return
	}

	h.logger.Info("updated post",
		zap.String("request_id", RequestID(r.Context())), zap.String("id", id))
	writeJSON(w, http.StatusOK, post)
}
