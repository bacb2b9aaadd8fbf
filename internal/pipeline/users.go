package pipeline

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// UserListing compiles the admin user listing pipeline. Unlike the item
// listing it always joins comments, because user rows always carry the
// three derived comment counts and must be sortable by them.
func UserListing(filter bson.M, opts ListOptions) []Stage {
	stages := []Stage{
		Match{Predicate: filter},
		AddFields{Fields: bson.D{{Key: "id", Value: "$_id"}}},
		Lookup{From: "comments", LocalField: "comments", ForeignField: "_id", As: commentLookupField},
		AddFields{Fields: bson.D{
			{Key: "commentCount", Value: bson.M{"$size": "$" + commentLookupField}},
			{Key: "commentCountEnabled", Value: commentCountWhere(false)},
			{Key: "commentCountDisabled", Value: commentCountWhere(true)},
		}},
	}

	if opts.Sort != "" {
		stages = append(stages, Sort{Keys: userSortKeys(opts)})
	}

	return append(stages,
		Skip{N: (opts.Page - 1) * opts.Limit},
		Limit{N: opts.Limit},
		Project{Spec: bson.D{
			{Key: "password", Value: 0},
			{Key: "comments", Value: 0},
			{Key: commentLookupField, Value: 0},
			{Key: "__v", Value: 0},
			{Key: "_id", Value: 0},
		}},
	)
}

// UserCount compiles the matching count pipeline.
func UserCount(filter bson.M) []Stage {
	return []Stage{Match{Predicate: filter}, Count{As: "total"}}
}

// userSortKeys orders descending unless the caller asked for "asc"
// (case-insensitive). Sorting by "comments" uses the enabled count, so
// soft-deleted comments never inflate a user's ranking. A secondary
// ascending identifier key makes page ordering deterministic unless the
// primary key already is the identifier.
func userSortKeys(opts ListOptions) bson.D {
	field := opts.Sort
	if field == SortByComments {
		field = "commentCountEnabled"
	}
	dir := -1
	if strings.EqualFold(opts.Order, "asc") {
		dir = 1
	}
	keys := bson.D{{Key: field, Value: dir}}
	if field != "_id" {
		keys = append(keys, bson.E{Key: "_id", Value: 1})
	}
	return keys
}
