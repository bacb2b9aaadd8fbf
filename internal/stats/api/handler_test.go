package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"culturaviva-api/internal/logger"
	"culturaviva-api/internal/models"
	"culturaviva-api/internal/stats"
	"culturaviva-api/internal/stats/api"
)

// fakePublisher records published engagement events.
type fakePublisher struct {
	events []models.EngagementEvent
	err    error
}

func (p *fakePublisher) PublishEngagement(ctx context.Context, event models.EngagementEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func newTestRouter(publisher stats.EngagementPublisher) *chi.Mux {
	handler := api.NewHandler(stats.NewService(nil, nil, nil), publisher, logger.NewLogger())
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestRecordVisitPublishesEngagementEvent(t *testing.T) {
	publisher := &fakePublisher{}
	router := newTestRouter(publisher)

	req := httptest.NewRequest(http.MethodPost, "/stats/visits", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, publisher.events, 1)
	assert.Equal(t, models.EngagementVisit, publisher.events[0].Type)
	assert.False(t, publisher.events[0].Timestamp.IsZero())
}

func TestRecordVisitPublishFailure(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker down")}
	router := newTestRouter(publisher)

	req := httptest.NewRequest(http.MethodPost, "/stats/visits", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSeriesEndpointsRequireAuth(t *testing.T) {
	router := newTestRouter(&fakePublisher{})

	for _, path := range []string{
		"/stats/visits",
		"/stats/disabled-users",
		"/stats/saved-items",
		"/stats/comments",
		"/stats/totals",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}
}
