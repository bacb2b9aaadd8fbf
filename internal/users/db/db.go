package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"culturaviva-api/internal/models"
	"culturaviva-api/internal/pipeline"
)

// DB executes the user listing pipelines against MongoDB.
type DB struct {
	Users *mongo.Collection
}

func NewDB(database *mongo.Database) *DB {
	return &DB{Users: database.Collection("users")}
}

// ListUsers runs the compiled admin listing pipeline, including the
// comments join and the three derived comment counts.
func (d *DB) ListUsers(ctx context.Context, filter bson.M, opts pipeline.ListOptions) ([]models.UserDTO, error) {
	cursor, err := d.Users.Aggregate(ctx, pipeline.Compile(pipeline.UserListing(filter, opts)))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.UserDTO{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (d *DB) CountUsers(ctx context.Context, filter bson.M) (int64, error) {
	return d.Users.CountDocuments(ctx, filter)
}

// DisableUser deactivates an account and returns whether it was active
// before, so a repeated disable is not counted twice.
func (d *DB) DisableUser(ctx context.Context, id primitive.ObjectID) (bool, error) {
	var prior struct {
		Active bool `bson:"active"`
	}
	err := d.Users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"active": false}},
	).Decode(&prior)
	if err != nil {
		return false, err
	}
	return prior.Active, nil
}
