package api

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API routes with the given router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/create-post", h.HandleCreatePost).Methods("POST")
	router.HandleFunc("/all-posts", h.HandleAllPosts).Methods("GET")
	router.HandleFunc("/all-post", h.HandleAllPosts).Methods("GET") // legacy spelling
	router.HandleFunc("/find-post/{id}", h.HandleFindPost).Methods("GET")
	router.HandleFunc("/update-post/{id}", h.HandleUpdatePost).Methods("PUT")
	router.HandleFunc("/delete/{id}", h.HandleDeletePost).Methods("DELETE")

	router.HandleFunc("/health", h.HandleHealth).Methods("GET")
}
