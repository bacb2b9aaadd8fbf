package pipeline

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemFilter holds the normalized listing filter parameters. Zero values
// mean "not supplied" and are omitted from the predicate entirely.
type ItemFilter struct {
	// Name is matched as a case-insensitive literal substring of the
	// item title; regex metacharacters in it are escaped.
	Name     string
	Category string
	ItemType string
	// StartDate is an inclusive lower bound and EndDate an exclusive
	// upper bound on the item start date.
	StartDate *time.Time
	EndDate   *time.Time
	// IDs restricts the listing to a reference set, e.g. a user's saved
	// items. nil means unrestricted; an empty non-nil set matches nothing.
	IDs []primitive.ObjectID
}

// EscapeRegex escapes every regex metacharacter in s so the result
// matches s literally. An empty input yields an empty pattern.
func EscapeRegex(s string) string {
	if s == "" {
		return ""
	}
	return regexp.QuoteMeta(s)
}

// Predicate builds the match predicate for the filter. Absent parameters
// produce no clause at all rather than a comparison against a zero value.
func (f ItemFilter) Predicate() bson.M {
	m := bson.M{}
	if f.Name != "" {
		m["title"] = bson.M{"$regex": EscapeRegex(f.Name), "$options": "i"}
	}
	if f.Category != "" {
		m["category"] = f.Category
	}
	if f.ItemType != "" {
		m["itemType"] = f.ItemType
	}
	if f.StartDate != nil || f.EndDate != nil {
		bounds := bson.M{}
		if f.StartDate != nil {
			bounds["$gte"] = *f.StartDate
		}
		if f.EndDate != nil {
			bounds["$lt"] = *f.EndDate
		}
		m["startDate"] = bounds
	}
	if f.IDs != nil {
		m["_id"] = bson.M{"$in": f.IDs}
	}
	return m
}
