package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"culturaviva-api/internal/auth"
	"culturaviva-api/internal/logger"
	"culturaviva-api/internal/models"
	"culturaviva-api/internal/pipeline"
	"culturaviva-api/internal/stats"
	statsdb "culturaviva-api/internal/stats/db"
	"culturaviva-api/internal/utils"
)

// Handler handles the statistics HTTP endpoints
type Handler struct {
	Service   *stats.Service
	Publisher stats.EngagementPublisher
	Logger    *logger.Logger
}

func NewHandler(service *stats.Service, publisher stats.EngagementPublisher, logger *logger.Logger) *Handler {
	return &Handler{Service: service, Publisher: publisher, Logger: logger}
}

// RegisterRoutes registers the statistics routes. Visit recording is
// public (every page view reports one); the dashboard series are
// admin-only, the breakdowns need a signed-in user.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/stats/visits", h.RecordVisit)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())
		r.Get("/stats/categories", h.CategoryBreakdown)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Get("/stats/visits", h.VisitSeries)
			r.Get("/stats/disabled-users", h.DisabledUserSeries)
			r.Get("/stats/saved-items", h.SavedItemSeries)
			r.Get("/stats/comments", h.CommentSeries)
			r.Get("/stats/totals", h.Totals)
		})
	})
}

// RecordVisit reports a page view on the engagement stream. The visit
// rides the same publisher as saves and comments, so with Kafka enabled
// it reaches the counter through the consumer like every other event.
func (h *Handler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	event := models.EngagementEvent{
		Type:      models.EngagementVisit,
		Timestamp: time.Now(),
	}
	if err := h.Publisher.PublishEngagement(r.Context(), event); err != nil {
		h.writeError(w, "failed to record visit", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("visit recorded", nil))
}

func (h *Handler) VisitSeries(w http.ResponseWriter, r *http.Request) {
	h.series(w, r, statsdb.SeriesVisits)
}

func (h *Handler) DisabledUserSeries(w http.ResponseWriter, r *http.Request) {
	h.series(w, r, statsdb.SeriesDisabledUsers)
}

func (h *Handler) SavedItemSeries(w http.ResponseWriter, r *http.Request) {
	h.series(w, r, statsdb.SeriesSavedItems)
}

func (h *Handler) CommentSeries(w http.ResponseWriter, r *http.Request) {
	h.series(w, r, statsdb.SeriesComments)
}

func (h *Handler) series(w http.ResponseWriter, r *http.Request, series string) {
	buckets, err := h.Service.Series(r.Context(), series, r.URL.Query().Get("range"))
	if err != nil {
		h.writeError(w, fmt.Sprintf("failed to load %s series", series), err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"stats": buckets})
}

func (h *Handler) CategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	counts, err := h.Service.CategoryBreakdown(r.Context(), scope, auth.UserID(r.Context()))
	if err != nil {
		h.writeError(w, "failed to load category breakdown", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"stats": counts})
}

func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	totals, err := h.Service.Totals(r.Context(), stats.TotalsQuery{
		Category:   q.Get("category"),
		ActiveOnly: q.Get("active") == "true",
	})
	if err != nil {
		h.writeError(w, "failed to load totals", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("totals retrieved", totals))
}

func (h *Handler) writeError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, pipeline.ErrInvalidParameter) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(message, err.Error()))
		return
	}
	h.Logger.Error("STATS", fmt.Sprintf("%s: %v", message, err))
	utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(message, "internal server error"))
}
