package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"culturaviva-api/internal/models"
	"culturaviva-api/internal/pipeline"
)

// DB executes the item listing pipelines against MongoDB.
type DB struct {
	Items    *mongo.Collection
	Users    *mongo.Collection
	Comments *mongo.Collection
}

func NewDB(database *mongo.Database) *DB {
	return &DB{
		Items:    database.Collection("items"),
		Users:    database.Collection("users"),
		Comments: database.Collection("comments"),
	}
}

// ListItems runs the compiled listing pipeline and decodes the projected
// page rows.
func (d *DB) ListItems(ctx context.Context, filter bson.M, opts pipeline.ListOptions) ([]models.ItemDTO, error) {
	cursor, err := d.Items.Aggregate(ctx, pipeline.Compile(pipeline.ItemListing(filter, opts)))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []models.ItemDTO{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CountItems runs the counting pipeline matching ListItems. The count
// must share the price refinement stages, so a plain CountDocuments is
// not enough.
func (d *DB) CountItems(ctx context.Context, filter bson.M, opts pipeline.ListOptions) (int64, error) {
	cursor, err := d.Items.Aggregate(ctx, pipeline.Compile(pipeline.ItemCount(filter, opts)))
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	// An empty result means no document reached the count stage.
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (d *DB) GetItem(ctx context.Context, id primitive.ObjectID) (*models.Item, error) {
	var item models.Item
	err := d.Items.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemComments returns an item's non-deleted comments, oldest first.
func (d *DB) GetItemComments(ctx context.Context, itemID primitive.ObjectID) ([]models.Comment, error) {
	cursor, err := d.Comments.Find(ctx, bson.M{"item": itemID, "deleted": false})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (d *DB) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := d.Users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetSaved adds or removes an item from a user's saved set. $addToSet
// keeps the set deduplicated under repeated saves.
func (d *DB) SetSaved(ctx context.Context, userID, itemID primitive.ObjectID, saved bool) error {
	op := "$pull"
	if saved {
		op = "$addToSet"
	}
	_, err := d.Users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{op: bson.M{"savedItems": itemID}},
	)
	return err
}

// SetAttending adds or removes an event from a user's attendance set.
func (d *DB) SetAttending(ctx context.Context, userID, itemID primitive.ObjectID, attending bool) error {
	op := "$pull"
	if attending {
		op = "$addToSet"
	}
	_, err := d.Users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{op: bson.M{"asistsTo": itemID}},
	)
	return err
}

// InsertComment stores a comment and links it from the item and the
// author.
func (d *DB) InsertComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if comment.Date.IsZero() {
		comment.Date = time.Now()
	}

	if _, err := d.Comments.InsertOne(ctx, comment); err != nil {
		return err
	}
	if _, err := d.Items.UpdateOne(ctx,
		bson.M{"_id": comment.Item},
		bson.M{"$addToSet": bson.M{"comments": comment.ID}},
	); err != nil {
		return err
	}
	_, err := d.Users.UpdateOne(ctx,
		bson.M{"_id": comment.User},
		bson.M{"$addToSet": bson.M{"comments": comment.ID}},
	)
	return err
}

// SoftDeleteComment flags a comment as deleted. With a non-nil author
// the update only matches the author's own comment, so a missing result
// covers both "no such comment" and "not yours". The document stays in
// place for audit and statistics.
func (d *DB) SoftDeleteComment(ctx context.Context, commentID primitive.ObjectID, author *primitive.ObjectID) (*models.Comment, error) {
	filter := bson.M{"_id": commentID}
	if author != nil {
		filter["user"] = *author
	}

	var comment models.Comment
	err := d.Comments.FindOneAndUpdate(ctx,
		filter,
		bson.M{"$set": bson.M{"deleted": true}},
	).Decode(&comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
