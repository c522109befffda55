package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// DeletedMessage is the confirmation text returned by a successful delete
const DeletedMessage = "One document deleted"

// HandleDeletePost handles DELETE requests to remove a post by id
func (h *Handler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.logger.Info("handleDeletePost called",
		zap.String("request_id", RequestID(r.Context())), zap.String("id", id))

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeStoreError(w, r, "delete post", err)
		return
	}

	h.logger.Info("deleted post",
		zap.String("request_id", RequestID(r.Context())), zap.String("id", id))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte(DeletedMessage))
}
