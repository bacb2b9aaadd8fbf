package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"culturaviva-api/internal/models"
	"culturaviva-api/internal/pipeline"
)

// ErrNotFound marks lookups of users that do not exist.
var ErrNotFound = errors.New("user not found")

// Repository is the storage surface the user service needs.
type Repository interface {
	ListUsers(ctx context.Context, filter bson.M, opts pipeline.ListOptions) ([]models.UserDTO, error)
	CountUsers(ctx context.Context, filter bson.M) (int64, error)
	DisableUser(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// EngagementPublisher receives engagement events for the statistics
// counters.
type EngagementPublisher interface {
	PublishEngagement(ctx context.Context, event models.EngagementEvent) error
}

// Query carries the raw admin listing query parameters.
type Query struct {
	Name string
	pipeline.RawListOptions
}

type Service struct {
	Repo      Repository
	Publisher EngagementPublisher
}

func NewService(repo Repository, publisher EngagementPublisher) *Service {
	return &Service{Repo: repo, Publisher: publisher}
}

// List runs the admin user listing: name filter, comment-count sort
// eligibility, deterministic pagination.
func (s *Service) List(ctx context.Context, q Query) (*models.Page[models.UserDTO], error) {
	opts, err := pipeline.ParseListOptions(q.RawListOptions)
	if err != nil {
		return nil, err
	}

	filter := bson.M{}
	if q.Name != "" {
		filter["name"] = bson.M{"$regex": pipeline.EscapeRegex(q.Name), "$options": "i"}
	}

	users, err := s.Repo.ListUsers(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	total, err := s.Repo.CountUsers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}

	return &models.Page[models.UserDTO]{
		Items:       users,
		CurrentPage: opts.Page,
		TotalPages:  (total + opts.Limit - 1) / opts.Limit,
		TotalItems:  total,
	}, nil
}

// Disable deactivates an account. The disabled-users counter only moves
// when the account was active, so repeated disables stay idempotent.
func (s *Service) Disable(ctx context.Context, userID string) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("%w: invalid id %q", pipeline.ErrInvalidParameter, userID)
	}

	wasActive, err := s.Repo.DisableUser(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: %s", ErrNotFound, userID)
		}
		return fmt.Errorf("disabling user: %w", err)
	}
	if !wasActive || s.Publisher == nil {
		return nil
	}

	return s.Publisher.PublishEngagement(ctx, models.EngagementEvent{
		Type:      models.EngagementUserDisabled,
		UserID:    userID,
		Timestamp: time.Now(),
	})
}
