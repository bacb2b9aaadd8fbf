package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"culturaviva-api/internal/models"
	"culturaviva-api/internal/pipeline"
)

// DB maintains the daily counter collections and runs the statistics
// pipelines. Counter updates are single atomic upserts: concurrent
// requests within the same day never race a separate find/save pair.
type DB struct {
	Visits          *mongo.Collection
	DisabledUsers   *mongo.Collection
	SavedItemsStats *mongo.Collection
	CommentsStats   *mongo.Collection
	Items           *mongo.Collection
	Users           *mongo.Collection
}

func NewDB(database *mongo.Database) *DB {
	return &DB{
		Visits:          database.Collection("visits"),
		DisabledUsers:   database.Collection("disableusers"),
		SavedItemsStats: database.Collection("saveditemsstats"),
		CommentsStats:   database.Collection("commentsstats"),
		Items:           database.Collection("items"),
		Users:           database.Collection("users"),
	}
}

// IncrementVisits bumps the visit counter for the given day key,
// creating the day document on first use.
func (d *DB) IncrementVisits(ctx context.Context, date string) error {
	return increment(ctx, d.Visits, date, bson.M{"$inc": bson.M{"count": 1}})
}

// IncrementDisabledUsers bumps the disabled-user counter and records the
// affected user in the day's deduplicated set.
func (d *DB) IncrementDisabledUsers(ctx context.Context, date string, userID primitive.ObjectID) error {
	return increment(ctx, d.DisabledUsers, date, bson.M{
		"$inc":      bson.M{"count": 1},
		"$addToSet": bson.M{"users": userID},
	})
}

// AdjustSavedItems moves the saved-items counter by delta (+1 save,
// -1 unsave) and maintains the day's item set accordingly.
func (d *DB) AdjustSavedItems(ctx context.Context, date string, itemID primitive.ObjectID, delta int64) error {
	filter, update, upsert := counterAdjustment(date, "items", itemID, delta)
	return apply(ctx, d.SavedItemsStats, filter, update, upsert)
}

// AdjustComments moves the comments counter by delta (+1 add, -1 delete)
// and maintains the day's comment set accordingly.
func (d *DB) AdjustComments(ctx context.Context, date string, commentID primitive.ObjectID, delta int64) error {
	filter, update, upsert := counterAdjustment(date, "comments", commentID, delta)
	return apply(ctx, d.CommentsStats, filter, update, upsert)
}

// counterAdjustment builds the filter, update and upsert mode for a
// signed counter move. Increments upsert the day document; decrements
// must neither create one nor take the count below zero, so they match
// only an existing document with a positive count. A decrement whose
// subject was counted on an earlier day leaves today untouched.
func counterAdjustment(date, field string, id primitive.ObjectID, delta int64) (bson.M, bson.M, bool) {
	if delta > 0 {
		return bson.M{"date": date},
			bson.M{"$inc": bson.M{"count": delta}, "$addToSet": bson.M{field: id}},
			true
	}
	return bson.M{"date": date, "count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"count": delta}, "$pull": bson.M{field: id}},
		false
}

func increment(ctx context.Context, coll *mongo.Collection, date string, update bson.M) error {
	return apply(ctx, coll, bson.M{"date": date}, update, true)
}

func apply(ctx context.Context, coll *mongo.Collection, filter, update bson.M, upsert bool) error {
	opts := options.FindOneAndUpdate().SetUpsert(upsert)
	err := coll.FindOneAndUpdate(ctx, filter, update, opts).Err()
	// The upsert path reports ErrNoDocuments when the day document was
	// just created; without upsert an unmatched filter means there is
	// nothing to adjust today. Both are successful outcomes.
	if err != nil && err != mongo.ErrNoDocuments {
		return err
	}
	return nil
}

// Series names accepted by Series.
const (
	SeriesVisits        = "visits"
	SeriesDisabledUsers = "disabled-users"
	SeriesSavedItems    = "saved-items"
	SeriesComments      = "comments"
)

// Series runs the time-bucketing pipeline for one counter collection.
func (d *DB) Series(ctx context.Context, series, rangeToken string) ([]models.StatBucket, error) {
	var coll *mongo.Collection
	switch series {
	case SeriesVisits:
		coll = d.Visits
	case SeriesDisabledUsers:
		coll = d.DisabledUsers
	case SeriesSavedItems:
		coll = d.SavedItemsStats
	case SeriesComments:
		coll = d.CommentsStats
	default:
		return nil, fmt.Errorf("unknown series %q", series)
	}

	cursor, err := coll.Aggregate(ctx, pipeline.Compile(pipeline.FilterDate(rangeToken)))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	buckets := []models.StatBucket{}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// CategoryBreakdown groups items by category, optionally restricted to a
// reference set and a start-date lower bound.
func (d *DB) CategoryBreakdown(ctx context.Context, stages []pipeline.Stage) ([]models.CategoryCount, error) {
	cursor, err := d.Items.Aggregate(ctx, pipeline.Compile(stages))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := []models.CategoryCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (d *DB) CountItems(ctx context.Context, filter bson.M) (int64, error) {
	return d.Items.CountDocuments(ctx, filter)
}

func (d *DB) CountUsers(ctx context.Context, filter bson.M) (int64, error) {
	return d.Users.CountDocuments(ctx, filter)
}

func (d *DB) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := d.Users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}
