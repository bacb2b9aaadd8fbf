package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item types stored in the "itemType" discriminator field.
const (
	ItemTypeEvent = "event"
	ItemTypePlace = "place"
)

// PriceEntry is one pricing tier of an item. A nil Amount means the tier
// is free; minimum-price computations treat it as 0.
type PriceEntry struct {
	Group  string   `bson:"group,omitempty" json:"group,omitempty"`
	Amount *float64 `bson:"amount" json:"amount"`
}

// Item is a catalog entry (an event or a place).
type Item struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Category    string               `bson:"category" json:"category"`
	ItemType    string               `bson:"itemType" json:"itemType"`
	Price       []PriceEntry         `bson:"price" json:"price"`
	StartDate   *time.Time           `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate     *time.Time           `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Comments    []primitive.ObjectID `bson:"comments" json:"comments"`
}

// ItemDTO is the projected shape produced by the listing pipeline: the
// internal identifier is replaced by a public "id" field and aggregation
// bookkeeping fields are already stripped.
type ItemDTO struct {
	ID          primitive.ObjectID   `bson:"id" json:"id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Category    string               `bson:"category" json:"category"`
	ItemType    string               `bson:"itemType" json:"itemType"`
	Price       []PriceEntry         `bson:"price" json:"price"`
	StartDate   *time.Time           `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate     *time.Time           `bson:"endDate,omitempty" json:"endDate,omitempty"`
	Comments    []primitive.ObjectID `bson:"comments" json:"comments"`
}

// Page is a paginated listing result.
type Page[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
}
