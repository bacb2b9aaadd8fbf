package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a user comment on an item. Comments are soft-deleted: the
// Deleted flag hides them from listings but keeps them for statistics.
type Comment struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text    string             `bson:"text" json:"text"`
	Date    time.Time          `bson:"date" json:"date"`
	User    primitive.ObjectID `bson:"user" json:"user"`
	Item    primitive.ObjectID `bson:"item" json:"item"`
	Deleted bool               `bson:"deleted" json:"deleted"`
}
