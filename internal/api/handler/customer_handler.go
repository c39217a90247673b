package handler

import (
	"encoding/json"
	"fmt"
	"github.com/ZertGraf/customer-roster/internal/domain"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	"github.com/ZertGraf/customer-roster/internal/service"
	"github.com/go-chi/chi/v5"
	. "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"net/http"
)

// CustomerHandler exposes the Customer screen signals of a client:
// focus-enter/exit, pull-to-refresh, checkbox and search input changes.
type CustomerHandler struct {
	sessions *service.SessionRegistry
	logger   *logger.Logger
}

func NewCustomerHandler(sessions *service.SessionRegistry, logger *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		sessions: sessions,
		logger:   logger.Component("handler/customer"),
	}
}

func (h *CustomerHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/sessions", h.OpenSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.CloseSession)
		r.Post("/refresh", h.Refresh)
		r.Put("/role", h.SelectRole)
		r.Put("/search", h.Search)
	})

	return r
}

type SessionResponse struct {
	SessionID string             `json:"session_id"`
	View      service.RosterView `json:"view"`
}

func (h *CustomerHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	id, controller, err := h.sessions.Open(r.Context())
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, SessionResponse{
		SessionID: id.String(),
		View:      controller.View(),
	}, h.logger)
}

func (h *CustomerHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, controller, err := h.session(r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{SessionID: id.String(), View: controller.View()}, h.logger)
}

func (h *CustomerHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	if err := h.sessions.Close(id); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CustomerHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, controller, err := h.session(r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	controller.Refresh()

	writeJSON(w, http.StatusOK, SessionResponse{SessionID: id.String(), View: controller.View()}, h.logger)
}

type SelectRoleRequest struct {
	RoleID *int `json:"role_id"`
}

func (req SelectRoleRequest) Validate() error {
	return ValidateStruct(&req,
		Field(&req.RoleID, NotNil),
	)
}

func (h *CustomerHandler) SelectRole(w http.ResponseWriter, r *http.Request) {
	id, controller, err := h.session(r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	var req SelectRoleRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	option, err := domain.FindRoleFilterOption(domain.Role(*req.RoleID))
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	controller.SelectRole(option)

	writeJSON(w, http.StatusOK, SessionResponse{SessionID: id.String(), View: controller.View()}, h.logger)
}

type SearchRequest struct {
	Query *string `json:"query"`
}

func (req SearchRequest) Validate() error {
	return ValidateStruct(&req,
		Field(&req.Query, NotNil, Length(0, 256)),
	)
}

func (h *CustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	id, controller, err := h.session(r)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	var req SearchRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	controller.SetSearchQuery(*req.Query)

	writeJSON(w, http.StatusOK, SessionResponse{SessionID: id.String(), View: controller.View()}, h.logger)
}

func (h *CustomerHandler) session(r *http.Request) (uuid.UUID, *service.RosterController, error) {
	id, err := sessionID(r)
	if err != nil {
		return uuid.Nil, nil, err
	}

	controller, err := h.sessions.Get(id)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return id, controller, nil
}

func sessionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id", domain.ErrSessionNotFound)
	}
	return id, nil
}

func decodeAndValidate(r *http.Request, req Validatable) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return fmt.Errorf("%w: invalid request body", errBadRequest)
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
