package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// HandleFindPost handles GET requests to retrieve a single post by id
func (h *Handler) HandleFindPost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.logger.Info("handleFindPost called",
		zap.String("request_id", RequestID(r.Context())), zap.String("id", id))

	post, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, "find post", err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}
