package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CounterDateLayout is the fixed-width key format of daily counter
// documents. The statistics pipelines slice these keys positionally, so
// the format must never change.
const CounterDateLayout = "2006-01-02"

// Counter is a per-calendar-day usage counter (visits, disabled users,
// saved items). One document exists per day, created on the first event
// of that day and incremented atomically afterwards. Users and Items are
// optional deduplicated reference sets maintained alongside the count.
type Counter struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Date     string               `bson:"date" json:"date"`
	Count    int64                `bson:"count" json:"count"`
	Users    []primitive.ObjectID `bson:"users,omitempty" json:"users,omitempty"`
	Items    []primitive.ObjectID `bson:"items,omitempty" json:"items,omitempty"`
	Comments []primitive.ObjectID `bson:"comments,omitempty" json:"comments,omitempty"`
}

// CounterDateKey formats a timestamp as a counter document key.
func CounterDateKey(t time.Time) string {
	return t.Format(CounterDateLayout)
}

// StatBucket is one row of a time-bucketed statistics series: a month
// bucket ("2025-04") or a day bucket ("2025-04-17"). Name carries the
// localized month or weekday label; Number is the day of month and is
// only present in daily mode.
type StatBucket struct {
	ID     string `bson:"id" json:"id"`
	Total  int64  `bson:"total" json:"total"`
	Name   string `bson:"name" json:"name"`
	Number *int32 `bson:"number,omitempty" json:"number,omitempty"`
}

// CategoryCount is one row of a category breakdown.
type CategoryCount struct {
	Category string `bson:"_id" json:"category"`
	Total    int64  `bson:"total" json:"total"`
}
