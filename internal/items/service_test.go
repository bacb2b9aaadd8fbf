package items_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"culturaviva-api/internal/items"
	"culturaviva-api/internal/models"
	"culturaviva-api/internal/pipeline"
)

// MockRepository is a mock implementation of the items.Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListItems(ctx context.Context, filter bson.M, opts pipeline.ListOptions) ([]models.ItemDTO, error) {
	args := m.Called(ctx, filter, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ItemDTO), args.Error(1)
}

func (m *MockRepository) CountItems(ctx context.Context, filter bson.M, opts pipeline.ListOptions) (int64, error) {
	args := m.Called(ctx, filter, opts)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetItem(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockRepository) GetItemComments(ctx context.Context, itemID primitive.ObjectID) ([]models.Comment, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockRepository) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockRepository) SetSaved(ctx context.Context, userID, itemID primitive.ObjectID, saved bool) error {
	args := m.Called(ctx, userID, itemID, saved)
	return args.Error(0)
}

func (m *MockRepository) SetAttending(ctx context.Context, userID, itemID primitive.ObjectID, attending bool) error {
	args := m.Called(ctx, userID, itemID, attending)
	return args.Error(0)
}

func (m *MockRepository) InsertComment(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockRepository) SoftDeleteComment(ctx context.Context, commentID primitive.ObjectID, author *primitive.ObjectID) (*models.Comment, error) {
	args := m.Called(ctx, commentID, author)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

// MockPublisher is a mock implementation of the items.EngagementPublisher interface
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishEngagement(ctx context.Context, event models.EngagementEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestListBuildsPage(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := items.NewService(mockRepo, nil)

	dtos := []models.ItemDTO{{Title: "Concierto"}, {Title: "Museo"}}
	mockRepo.On("ListItems", mock.Anything, mock.Anything, mock.Anything).Return(dtos, nil)
	mockRepo.On("CountItems", mock.Anything, mock.Anything, mock.Anything).Return(int64(7), nil)

	page, err := svc.List(context.Background(), items.Query{
		RawListOptions: pipeline.RawListOptions{Page: "2", Limit: "3"},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(2), page.CurrentPage)
	assert.Equal(t, int64(7), page.TotalItems)
	assert.Equal(t, int64(3), page.TotalPages)
	assert.Len(t, page.Items, 2)
	mockRepo.AssertExpectations(t)
}

func TestListEmptyResultIsNotAnError(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := items.NewService(mockRepo, nil)

	mockRepo.On("ListItems", mock.Anything, mock.Anything, mock.Anything).Return([]models.ItemDTO{}, nil)
	mockRepo.On("CountItems", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	page, err := svc.List(context.Background(), items.Query{})

	assert.NoError(t, err)
	assert.Equal(t, int64(0), page.TotalItems)
	assert.Equal(t, int64(0), page.TotalPages)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestListRejectsBadPrice(t *testing.T) {
	svc := items.NewService(new(MockRepository), nil)

	_, err := svc.List(context.Background(), items.Query{
		RawListOptions: pipeline.RawListOptions{MaxPrice: "cheap"},
	})

	assert.ErrorIs(t, err, pipeline.ErrInvalidParameter)
}

func TestListRejectsBadDate(t *testing.T) {
	svc := items.NewService(new(MockRepository), nil)

	_, err := svc.List(context.Background(), items.Query{StartDate: "not-a-date"})

	assert.ErrorIs(t, err, pipeline.ErrInvalidParameter)
}

func TestListPassesFilterPredicate(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := items.NewService(mockRepo, nil)

	expected := bson.M{"category": "música"}
	mockRepo.On("ListItems", mock.Anything, expected, mock.Anything).Return([]models.ItemDTO{}, nil)
	mockRepo.On("CountItems", mock.Anything, expected, mock.Anything).Return(int64(0), nil)

	_, err := svc.List(context.Background(), items.Query{Category: "música"})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestListSavedScopesToUserSet(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := items.NewService(mockRepo, nil)

	userID := primitive.NewObjectID()
	saved := []primitive.ObjectID{primitive.NewObjectID()}
	mockRepo.On("GetUser", mock.Anything, userID).Return(&models.User{ID: userID, SavedItems: saved}, nil)
	mockRepo.On("ListItems", mock.Anything, bson.M{"_id": bson.M{"$in": saved}}, mock.Anything).
		Return([]models.ItemDTO{}, nil)
	mockRepo.On("CountItems", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	_, err := svc.ListSaved(context.Background(), userID.Hex(), items.Query{})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestListSavedEmptySetMatchesNothing(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := items.NewService(mockRepo, nil)

	userID := primitive.NewObjectID()
	mockRepo.On("GetUser", mock.Anything, userID).Return(&models.User{ID: userID}, nil)
	// A user with nothing saved must still get a scoped (empty) filter,
	// not the whole catalog.
	mockRepo.On("ListItems", mock.Anything, bson.M{"_id": bson.M{"$in": []primitive.ObjectID{}}}, mock.Anything).
		Return([]models.ItemDTO{}, nil)
	mockRepo.On("CountItems", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	_, err := svc.ListSaved(context.Background(), userID.Hex(), items.Query{})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestSetSavedPublishesEngagement(t *testing.T) {
	mockRepo := new(MockRepository)
	mockPub := new(MockPublisher)
	svc := items.NewService(mockRepo, mockPub)

	userID := primitive.NewObjectID()
	itemID := primitive.NewObjectID()
	mockRepo.On("SetSaved", mock.Anything, userID, itemID, true).Return(nil)
	mockPub.On("PublishEngagement", mock.Anything, mock.MatchedBy(func(ev models.EngagementEvent) bool {
		return ev.Type == models.EngagementItemSaved && ev.ItemID == itemID.Hex()
	})).Return(nil)

	err := svc.SetSaved(context.Background(), userID.Hex(), itemID.Hex(), true)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestSetSavedRejectsBadIDs(t *testing.T) {
	svc := items.NewService(new(MockRepository), nil)

	err := svc.SetSaved(context.Background(), "nope", primitive.NewObjectID().Hex(), true)

	assert.ErrorIs(t, err, pipeline.ErrInvalidParameter)
}

func TestAddCommentRejectsEmptyText(t *testing.T) {
	svc := items.NewService(new(MockRepository), nil)

	_, err := svc.AddComment(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex(), "")

	assert.ErrorIs(t, err, pipeline.ErrInvalidParameter)
}

func TestDeleteCommentScopesToAuthorUnlessAdmin(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := items.NewService(mockRepo, nil)

	userID := primitive.NewObjectID()
	commentID := primitive.NewObjectID()
	mockRepo.On("SoftDeleteComment", mock.Anything, commentID, &userID).
		Return(&models.Comment{ID: commentID, User: userID}, nil)

	err := svc.DeleteComment(context.Background(), userID.Hex(), commentID.Hex(), false)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestDeleteCommentAdminSkipsAuthorScope(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := items.NewService(mockRepo, nil)

	commentID := primitive.NewObjectID()
	mockRepo.On("SoftDeleteComment", mock.Anything, commentID, (*primitive.ObjectID)(nil)).
		Return(&models.Comment{ID: commentID}, nil)

	err := svc.DeleteComment(context.Background(), primitive.NewObjectID().Hex(), commentID.Hex(), true)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestGetMissingItemIsNotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := items.NewService(mockRepo, nil)

	itemID := primitive.NewObjectID()
	mockRepo.On("GetItem", mock.Anything, itemID).Return(nil, mongo.ErrNoDocuments)

	_, err := svc.Get(context.Background(), itemID.Hex())

	assert.ErrorIs(t, err, items.ErrNotFound)
}
