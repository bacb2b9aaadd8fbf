package items

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

// ErrNotFound marks lookups of items, users or comments that do not
// exist. Handlers map it to a 404 response.
var ErrNotFound = errors.New("not found")

// queryDateLayout is the wire format of startDate/endDate query
// parameters.
const queryDateLayout = "2006-01-02"

// Repository is the storage surface the item service needs. db.DB
// implements it; tests substitute a mock.
type Repository interface {
	ListItems(ctx context.Context, filter bson.M, opts pipeline.ListOptions) ([]models.ItemDTO, error)
	CountItems(ctx context.Context, filter bson.M, opts pipeline.ListOptions) (int64, error)
	GetItem(ctx context.Context, id primitive.ObjectID) (*models.Item, error)
	GetItemComments(ctx context.Context, itemID primitive.ObjectID) ([]models.Comment, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetSaved(ctx context.Context, userID, itemID primitive.ObjectID, saved bool) error
	SetAttending(ctx context.Context, userID, itemID primitive.ObjectID, attending bool) error
	InsertComment(ctx context.Context, comment *models.Comment) error
	SoftDeleteComment(ctx context.Context, commentID primitive.ObjectID, author *primitive.ObjectID) (*models.Comment, error)
}

// EngagementPublisher receives engagement events. The Kafka producer
// implements it; with Kafka disabled the statistics service is wired in
// directly.
type EngagementPublisher interface {
	PublishEngagement(ctx context.Context, event models.EngagementEvent) error
}

// Query carries the raw listing query parameters.
type Query struct {
	Name      string
	Category  string
	ItemType  string
	StartDate string
	EndDate   string
	pipeline.RawListOptions
}

// ItemDetail is an item together with its visible comments.
type ItemDetail struct {
	models.Item
	Comments []models.Comment `json:"comments"`
}

type Service struct {
	Repo      Repository
	Publisher EngagementPublisher
}

func NewService(repo Repository, publisher EngagementPublisher) *Service {
	return &Service{Repo: repo, Publisher: publisher}
}

// List runs a filtered, sorted, paginated item listing.
func (s *Service) List(ctx context.Context, q Query) (*models.Page[models.ItemDTO], error) {
	return s.list(ctx, q, nil)
}

// ListSaved lists the caller's saved items, with the same filtering as
// List applied on top of the scope.
func (s *Service) ListSaved(ctx context.Context, userID string, q Query) (*models.Page[models.ItemDTO], error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, q, refSet(user.SavedItems))
}

// ListAttending lists the events the caller attends.
func (s *Service) ListAttending(ctx context.Context, userID string, q Query) (*models.Page[models.ItemDTO], error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, q, refSet(user.AsistsTo))
}

func (s *Service) list(ctx context.Context, q Query, scope []primitive.ObjectID) (*models.Page[models.ItemDTO], error) {
	opts, err := pipeline.ParseListOptions(q.RawListOptions)
	if err != nil {
		return nil, err
	}

	filter := pipeline.ItemFilter{
		Name:     q.Name,
		Category: q.Category,
		ItemType: q.ItemType,
		IDs:      scope,
	}
	if filter.StartDate, err = parseQueryDate("startDate", q.StartDate); err != nil {
		return nil, err
	}
	if filter.EndDate, err = parseQueryDate("endDate", q.EndDate); err != nil {
		return nil, err
	}

	predicate := filter.Predicate()
	items, err := s.Repo.ListItems(ctx, predicate, opts)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	total, err := s.Repo.CountItems(ctx, predicate, opts)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	return &models.Page[models.ItemDTO]{
		Items:       items,
		CurrentPage: opts.Page,
		TotalPages:  totalPages(total, opts.Limit),
		TotalItems:  total,
	}, nil
}

// Get returns an item with its non-deleted comments.
func (s *Service) Get(ctx context.Context, itemID string) (*ItemDetail, error) {
	id, err := parseID(itemID)
	if err != nil {
		return nil, err
	}

	item, err := s.Repo.GetItem(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "item")
	}
	comments, err := s.Repo.GetItemComments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading comments: %w", err)
	}
	return &ItemDetail{Item: *item, Comments: comments}, nil
}

// SetSaved toggles an item in the caller's saved set and reports the
// change to the engagement stream.
func (s *Service) SetSaved(ctx context.Context, userID, itemID string, saved bool) error {
	uid, iid, err := parseIDs(userID, itemID)
	if err != nil {
		return err
	}
	if err := s.Repo.SetSaved(ctx, uid, iid, saved); err != nil {
		return fmt.Errorf("updating saved items: %w", err)
	}

	eventType := models.EngagementItemUnsaved
	if saved {
		eventType = models.EngagementItemSaved
	}
	return s.publish(ctx, models.EngagementEvent{
		Type:      eventType,
		UserID:    userID,
		ItemID:    itemID,
		Timestamp: time.Now(),
	})
}

// SetAttending toggles an event in the caller's attendance set.
func (s *Service) SetAttending(ctx context.Context, userID, itemID string, attending bool) error {
	uid, iid, err := parseIDs(userID, itemID)
	if err != nil {
		return err
	}
	return s.Repo.SetAttending(ctx, uid, iid, attending)
}

// AddComment stores a comment on an item.
func (s *Service) AddComment(ctx context.Context, userID, itemID, text string) (*models.Comment, error) {
	uid, iid, err := parseIDs(userID, itemID)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty comment text", pipeline.ErrInvalidParameter)
	}

	comment := &models.Comment{Text: text, User: uid, Item: iid, Date: time.Now()}
	if err := s.Repo.InsertComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("inserting comment: %w", err)
	}

	err = s.publish(ctx, models.EngagementEvent{
		Type:      models.EngagementCommentAdded,
		UserID:    userID,
		ItemID:    itemID,
		CommentID: comment.ID.Hex(),
		Timestamp: comment.Date,
	})
	return comment, err
}

// DeleteComment soft-deletes a comment. Only the author or an admin may
// delete; the comment document is kept for statistics.
func (s *Service) DeleteComment(ctx context.Context, userID, commentID string, admin bool) error {
	cid, err := parseID(commentID)
	if err != nil {
		return err
	}

	var author *primitive.ObjectID
	if !admin {
		uid, err := parseID(userID)
		if err != nil {
			return err
		}
		author = &uid
	}

	if _, err := s.Repo.SoftDeleteComment(ctx, cid, author); err != nil {
		return notFoundOr(err, "comment")
	}

	return s.publish(ctx, models.EngagementEvent{
		Type:      models.EngagementCommentDeleted,
		UserID:    userID,
		CommentID: commentID,
		Timestamp: time.Now(),
	})
}

func (s *Service) publish(ctx context.Context, event models.EngagementEvent) error {
	if s.Publisher == nil {
		return nil
	}
	return s.Publisher.PublishEngagement(ctx, event)
}

func (s *Service) getUser(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return user, nil
}

// refSet makes a scope explicit: a user with no saved items gets an
// empty set, which matches nothing, never an absent (unrestricted) scope.
func refSet(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}

func totalPages(total, limit int64) int64 {
	return (total + limit - 1) / limit
}

func parseQueryDate(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(queryDateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a date", pipeline.ErrInvalidParameter, name, s)
	}
	return &t, nil
}

func parseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id %q", pipeline.ErrInvalidParameter, s)
	}
	return id, nil
}

func parseIDs(userID, itemID string) (primitive.ObjectID, primitive.ObjectID, error) {
	uid, err := parseID(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	iid, err := parseID(itemID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return uid, iid, nil
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
