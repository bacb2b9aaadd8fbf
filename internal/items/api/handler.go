package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"culturaviva-api/internal/auth"
	"culturaviva-api/internal/items"
	"culturaviva-api/internal/logger"
	"culturaviva-api/internal/pipeline"
	"culturaviva-api/internal/utils"
)

// Handler handles item listing and engagement HTTP endpoints
type Handler struct {
	Service *items.Service
	Logger  *logger.Logger
}

func NewHandler(service *items.Service, logger *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

// RegisterRoutes registers the item routes on a chi router. Everything
// under /items requires authentication except the public listing and
// detail.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/items", h.ListItems)
	r.Get("/items/{itemID}", h.GetItem)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())
		r.Get("/items/saved", h.ListSaved)
		r.Get("/items/attending", h.ListAttending)
		r.Post("/items/{itemID}/save", h.SaveItem)
		r.Delete("/items/{itemID}/save", h.UnsaveItem)
		r.Post("/items/{itemID}/attend", h.AttendItem)
		r.Delete("/items/{itemID}/attend", h.UnattendItem)
		r.Post("/items/{itemID}/comments", h.AddComment)
		r.Delete("/comments/{commentID}", h.DeleteComment)
	})
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.List(r.Context(), queryFromRequest(r))
	if err != nil {
		h.writeError(w, "failed to list items", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) ListSaved(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.ListSaved(r.Context(), auth.UserID(r.Context()), queryFromRequest(r))
	if err != nil {
		h.writeError(w, "failed to list saved items", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) ListAttending(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.ListAttending(r.Context(), auth.UserID(r.Context()), queryFromRequest(r))
	if err != nil {
		h.writeError(w, "failed to list attended events", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Service.Get(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(w, "failed to get item", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("item retrieved", detail))
}

func (h *Handler) SaveItem(w http.ResponseWriter, r *http.Request) {
	h.setSaved(w, r, true)
}

func (h *Handler) UnsaveItem(w http.ResponseWriter, r *http.Request) {
	h.setSaved(w, r, false)
}

func (h *Handler) setSaved(w http.ResponseWriter, r *http.Request, saved bool) {
	itemID := chi.URLParam(r, "itemID")
	if err := h.Service.SetSaved(r.Context(), auth.UserID(r.Context()), itemID, saved); err != nil {
		h.writeError(w, "failed to update saved items", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("saved items updated", nil))
}

func (h *Handler) AttendItem(w http.ResponseWriter, r *http.Request) {
	h.setAttending(w, r, true)
}

func (h *Handler) UnattendItem(w http.ResponseWriter, r *http.Request) {
	h.setAttending(w, r, false)
}

func (h *Handler) setAttending(w http.ResponseWriter, r *http.Request, attending bool) {
	itemID := chi.URLParam(r, "itemID")
	if err := h.Service.SetAttending(r.Context(), auth.UserID(r.Context()), itemID, attending); err != nil {
		h.writeError(w, "failed to update attendance", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("attendance updated", nil))
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	comment, err := h.Service.AddComment(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "itemID"), body.Text)
	if err != nil {
		h.writeError(w, "failed to add comment", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("comment added", comment))
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := h.Service.DeleteComment(ctx, auth.UserID(ctx), chi.URLParam(r, "commentID"), auth.IsAdmin(ctx))
	if err != nil {
		h.writeError(w, "failed to delete comment", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("comment deleted", nil))
}

func (h *Handler) writeError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidParameter):
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(message, err.Error()))
	case errors.Is(err, items.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, err.Error()))
	default:
		h.Logger.Error("ITEMS", fmt.Sprintf("%s: %v", message, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(message, "internal server error"))
	}
}

func queryFromRequest(r *http.Request) items.Query {
	q := r.URL.Query()
	return items.Query{
		Name:      q.Get("name"),
		Category:  q.Get("category"),
		ItemType:  q.Get("itemType"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		RawListOptions: pipeline.RawListOptions{
			Sort:     q.Get("sort"),
			Order:    q.Get("order"),
			Page:     q.Get("page"),
			Limit:    q.Get("limit"),
			MinPrice: q.Get("minPrice"),
			MaxPrice: q.Get("maxPrice"),
		},
	}
}
