package handler

import (
	"encoding/json"
	"fmt"
	"github.com/ZertGraf/customer-roster/internal/domain"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	"github.com/ZertGraf/customer-roster/internal/service"
	"github.com/go-chi/chi/v5"
	"net/http"
)

// DirectoryHandler serves the self-hosted roster in the same wire shape the
// Customer screen fetches.
type DirectoryHandler struct {
	directory *service.DirectoryService
	logger    *logger.Logger
}

func NewDirectoryHandler(directory *service.DirectoryService, logger *logger.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		directory: directory,
		logger:    logger.Component("handler/directory"),
	}
}

func (h *DirectoryHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/users", h.ListUsers)
	r.Put("/users", h.ReplaceUsers)

	return r
}

type DirectoryPayload struct {
	Users []domain.User `json:"users"`
}

func (h *DirectoryHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.directory.ListUsers(r.Context())
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, DirectoryPayload{Users: users}, h.logger)
}

func (h *DirectoryHandler) ReplaceUsers(w http.ResponseWriter, r *http.Request) {
	var req DirectoryPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, fmt.Errorf("%w: invalid request body", errBadRequest), h.logger)
		return
	}

	if req.Users == nil {
		req.Users = []domain.User{}
	}

	if err := h.directory.ReplaceUsers(r.Context(), req.Users); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, req, h.logger)
}
