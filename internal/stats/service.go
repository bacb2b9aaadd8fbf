package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"culturaviva-api/internal/logger"
	"culturaviva-api/internal/models"
	"culturaviva-api/internal/pipeline"
	statsdb "culturaviva-api/internal/stats/db"
)

// Store is the counter and aggregation surface the statistics service
// needs. db.DB implements it; tests substitute a mock.
type Store interface {
	IncrementVisits(ctx context.Context, date string) error
	IncrementDisabledUsers(ctx context.Context, date string, userID primitive.ObjectID) error
	AdjustSavedItems(ctx context.Context, date string, itemID primitive.ObjectID, delta int64) error
	AdjustComments(ctx context.Context, date string, commentID primitive.ObjectID, delta int64) error
	Series(ctx context.Context, series, rangeToken string) ([]models.StatBucket, error)
	CategoryBreakdown(ctx context.Context, stages []pipeline.Stage) ([]models.CategoryCount, error)
	CountItems(ctx context.Context, filter bson.M) (int64, error)
	CountUsers(ctx context.Context, filter bson.M) (int64, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// EngagementPublisher receives engagement events. Handlers report usage
// through it so the visit path rides the same stream as every other
// engagement event; Service implements it for the broker-less mode.
type EngagementPublisher interface {
	PublishEngagement(ctx context.Context, event models.EngagementEvent) error
}

// Breakdown scopes accepted by CategoryBreakdown.
const (
	ScopeAll       = "all"
	ScopeAttending = "attending"
	ScopeUpcoming  = "upcoming"
)

// Totals is the user/event count summary.
type Totals struct {
	Users  int64 `json:"users"`
	Events int64 `json:"events"`
}

type Service struct {
	Store  Store
	Cache  Cache
	Logger *logger.Logger
}

func NewService(store Store, cache Cache, log *logger.Logger) *Service {
	return &Service{Store: store, Cache: cache, Logger: log}
}

// PublishEngagement applies an engagement event synchronously. It
// satisfies the publisher interface of the feature services, so with
// Kafka disabled they write counters through the same contract the
// consumer uses.
func (s *Service) PublishEngagement(ctx context.Context, event models.EngagementEvent) error {
	return s.Apply(ctx, event)
}

// Apply routes one engagement event to its counter. Events with ids
// that do not parse come back as errors; callers treat them as
// unretryable.
func (s *Service) Apply(ctx context.Context, event models.EngagementEvent) error {
	when := event.Timestamp
	if when.IsZero() {
		when = time.Now()
	}
	date := models.CounterDateKey(when)

	switch event.Type {
	case models.EngagementVisit:
		return s.Store.IncrementVisits(ctx, date)
	case models.EngagementUserDisabled:
		userID, err := primitive.ObjectIDFromHex(event.UserID)
		if err != nil {
			return fmt.Errorf("user_disabled event with bad user id %q: %w", event.UserID, err)
		}
		return s.Store.IncrementDisabledUsers(ctx, date, userID)
	case models.EngagementItemSaved, models.EngagementItemUnsaved:
		itemID, err := primitive.ObjectIDFromHex(event.ItemID)
		if err != nil {
			return fmt.Errorf("%s event with bad item id %q: %w", event.Type, event.ItemID, err)
		}
		var delta int64 = 1
		if event.Type == models.EngagementItemUnsaved {
			delta = -1
		}
		return s.Store.AdjustSavedItems(ctx, date, itemID, delta)
	case models.EngagementCommentAdded, models.EngagementCommentDeleted:
		commentID, err := primitive.ObjectIDFromHex(event.CommentID)
		if err != nil {
			return fmt.Errorf("%s event with bad comment id %q: %w", event.Type, event.CommentID, err)
		}
		var delta int64 = 1
		if event.Type == models.EngagementCommentDeleted {
			delta = -1
		}
		return s.Store.AdjustComments(ctx, date, commentID, delta)
	default:
		return fmt.Errorf("unknown engagement event type %q", event.Type)
	}
}

// Series returns the time-bucketed counter series, read through the
// cache. The range token is normalized first so "12m" and an
// unrecognized token share one cache entry.
func (s *Service) Series(ctx context.Context, series, rangeToken string) ([]models.StatBucket, error) {
	rangeToken = pipeline.NormalizeRange(rangeToken)
	key := fmt.Sprintf("stats:%s:%s", series, rangeToken)

	if cached, ok := s.cacheGet(ctx, key); ok {
		var buckets []models.StatBucket
		if err := json.Unmarshal(cached, &buckets); err == nil {
			return buckets, nil
		}
		// A corrupt entry falls through to a fresh aggregation.
	}

	buckets, err := s.Store.Series(ctx, series, rangeToken)
	if err != nil {
		return nil, fmt.Errorf("aggregating %s series: %w", series, err)
	}
	if s.Logger != nil {
		s.Logger.LogStats(series, fmt.Sprintf("aggregated %d buckets for range %s", len(buckets), rangeToken))
	}

	if payload, err := json.Marshal(buckets); err == nil {
		s.cacheSet(ctx, key, payload)
	}
	return buckets, nil
}

// CategoryBreakdown groups items by category for the requested scope:
// the whole catalog, a user's attended items, or the attended items
// still upcoming.
func (s *Service) CategoryBreakdown(ctx context.Context, scope, userID string) ([]models.CategoryCount, error) {
	var ids []primitive.ObjectID
	var since *time.Time

	switch scope {
	case ScopeAll, "":
	case ScopeAttending, ScopeUpcoming:
		uid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid user id %q", pipeline.ErrInvalidParameter, userID)
		}
		user, err := s.Store.GetUser(ctx, uid)
		if err != nil {
			return nil, fmt.Errorf("loading user: %w", err)
		}
		ids = user.AsistsTo
		if ids == nil {
			ids = []primitive.ObjectID{}
		}
		if scope == ScopeUpcoming {
			now := time.Now()
			since = &now
		}
	default:
		return nil, fmt.Errorf("%w: unknown scope %q", pipeline.ErrInvalidParameter, scope)
	}

	counts, err := s.Store.CategoryBreakdown(ctx, pipeline.CategoryBreakdown(ids, since))
	if err != nil {
		return nil, fmt.Errorf("aggregating category breakdown: %w", err)
	}
	return counts, nil
}

// TotalsQuery filters the user/event count summary.
type TotalsQuery struct {
	Category   string
	ActiveOnly bool
}

// Totals counts users and events, with optional category and
// active-account filters.
func (s *Service) Totals(ctx context.Context, q TotalsQuery) (*Totals, error) {
	userFilter := bson.M{}
	if q.ActiveOnly {
		userFilter["active"] = true
	}
	users, err := s.Store.CountUsers(ctx, userFilter)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	eventFilter := bson.M{"itemType": models.ItemTypeEvent}
	if q.Category != "" {
		eventFilter["category"] = q.Category
	}
	events, err := s.Store.CountItems(ctx, eventFilter)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}

	return &Totals{Users: users, Events: events}, nil
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.Cache == nil {
		return nil, false
	}
	return s.Cache.Get(ctx, key)
}

func (s *Service) cacheSet(ctx context.Context, key string, value []byte) {
	if s.Cache == nil {
		return
	}
	s.Cache.Set(ctx, key, value)
}

// compile-time check that the mongo store satisfies the interface
var _ Store = (*statsdb.DB)(nil)
