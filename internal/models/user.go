package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a platform account. SavedItems and AsistsTo hold item references
// used to scope listings ("my saved items", "events I attend").
type User struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name       string               `bson:"name" json:"name"`
	Email      string               `bson:"email" json:"email"`
	Password   string               `bson:"password,omitempty" json:"-"`
	Active     bool                 `bson:"active" json:"active"`
	Admin      bool                 `bson:"admin" json:"admin"`
	SavedItems []primitive.ObjectID `bson:"savedItems" json:"savedItems"`
	AsistsTo   []primitive.ObjectID `bson:"asistsTo" json:"asistsTo"`
	Comments   []primitive.ObjectID `bson:"comments" json:"comments"`
}

// UserDTO is the projected shape produced by the admin user listing:
// password and raw comment references are stripped, the internal identifier
// is exposed as "id", and the three derived comment counts are attached.
type UserDTO struct {
	ID                   primitive.ObjectID   `bson:"id" json:"id"`
	Name                 string               `bson:"name" json:"name"`
	Email                string               `bson:"email" json:"email"`
	Active               bool                 `bson:"active" json:"active"`
	Admin                bool                 `bson:"admin" json:"admin"`
	SavedItems           []primitive.ObjectID `bson:"savedItems" json:"savedItems"`
	AsistsTo             []primitive.ObjectID `bson:"asistsTo" json:"asistsTo"`
	CommentCount         int64                `bson:"commentCount" json:"commentCount"`
	CommentCountEnabled  int64                `bson:"commentCountEnabled" json:"commentCountEnabled"`
	CommentCountDisabled int64                `bson:"commentCountDisabled" json:"commentCountDisabled"`
}
