package api

import (
	"go.uber.org/zap"

	"github.com/adfharrison1/go-blog/pkg/domain"
)

// maxBodyBytes caps request payloads for create and update
const maxBodyBytes = 1 << 20

// Handler provides HTTP handlers for the blog post API
type Handler struct {
	store  domain.PostStore
	logger *zap.Logger
}

// NewHandler creates a new API handler with dependency injection
func NewHandler(store domain.PostStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:  store,
		logger: logger,
	}
}
