package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"culturaviva-api/internal/auth"
	"culturaviva-api/internal/logger"
	"culturaviva-api/internal/pipeline"
	"culturaviva-api/internal/users"
	"culturaviva-api/internal/utils"
)

// Handler handles the admin user-management HTTP endpoints
type Handler struct {
	Service *users.Service
	Logger  *logger.Logger
}

func NewHandler(service *users.Service, logger *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

// RegisterRoutes registers the admin user routes on a chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(auth.Middleware())
		r.Use(auth.RequireAdmin)
		r.Get("/", h.ListUsers)
		r.Put("/{userID}/disable", h.DisableUser)
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.Service.List(r.Context(), users.Query{
		Name: q.Get("name"),
		RawListOptions: pipeline.RawListOptions{
			Sort:  q.Get("sort"),
			Order: q.Get("order"),
			Page:  q.Get("page"),
			Limit: q.Get("limit"),
		},
	})
	if err != nil {
		h.writeError(w, "failed to list users", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) DisableUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Disable(r.Context(), chi.URLParam(r, "userID")); err != nil {
		h.writeError(w, "failed to disable user", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("user disabled", nil))
}

func (h *Handler) writeError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidParameter):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(message, err.Error()))
	case errors.Is(err, users.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, err.Error()))
	default:
		h.Logger.Error("USERS", fmt.Sprintf("%s: %v", message, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(message, "internal server error"))
	}
}
