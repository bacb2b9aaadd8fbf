package pipeline

import (
	"go.mongodb.org/mongo-driver/bson"
)

// SortByComments selects ordering by the number of non-deleted comments.
const SortByComments = "comments"

// commentLookupField is the temporary array the comments join lands in.
const commentLookupField = "commentDocs"

// ItemListing compiles the item listing pipeline:
// match → id exposure → optional comment-count join → optional minimum
// price computation and range refinement → sort → paginate → projection.
func ItemListing(filter bson.M, opts ListOptions) []Stage {
	stages := []Stage{
		Match{Predicate: filter},
		// Expose the internal identifier under a public name before the
		// final projection drops it.
		AddFields{Fields: bson.D{{Key: "id", Value: "$_id"}}},
	}

	if opts.Sort == SortByComments {
		// Sorting by engagement counts only comments that are not
		// soft-deleted.
		stages = append(stages,
			Lookup{From: "comments", LocalField: "comments", ForeignField: "_id", As: commentLookupField},
			AddFields{Fields: bson.D{{Key: "commentCount", Value: enabledCommentCount()}}},
		)
	}

	stages = append(stages, priceRefinement(opts)...)

	if opts.Sort != "" {
		stages = append(stages, Sort{Keys: sortKeys(opts)})
	}

	stages = append(stages,
		Skip{N: (opts.Page - 1) * opts.Limit},
		Limit{N: opts.Limit},
		Project{Spec: bson.D{
			{Key: "commentCount", Value: 0},
			{Key: "minPrice", Value: 0},
			{Key: commentLookupField, Value: 0},
			{Key: "__v", Value: 0},
			{Key: "_id", Value: 0},
		}},
	)
	return stages
}

// ItemCount compiles the counting pipeline matching ItemListing: the same
// match and price refinement, followed by a count. Pagination totals must
// reflect the price filter, which only exists as a pipeline stage.
func ItemCount(filter bson.M, opts ListOptions) []Stage {
	stages := []Stage{Match{Predicate: filter}}
	stages = append(stages, priceRefinement(opts)...)
	return append(stages, Count{As: "total"})
}

// priceRefinement computes the minimum price tier and filters on it.
// Supplying neither bound skips both stages.
func priceRefinement(opts ListOptions) []Stage {
	if opts.MinPrice == nil && opts.MaxPrice == nil {
		return nil
	}

	var bounds []bson.M
	if opts.MinPrice != nil {
		bounds = append(bounds, bson.M{"$gte": bson.A{"$minPrice", *opts.MinPrice}})
	}
	if opts.MaxPrice != nil {
		bounds = append(bounds, bson.M{"$lte": bson.A{"$minPrice", *opts.MaxPrice}})
	}

	return []Stage{
		// A nil tier amount is a free tier and counts as 0, so free
		// items stay discoverable under maxPrice=0.
		AddFields{Fields: bson.D{{Key: "minPrice", Value: bson.M{
			"$min": bson.M{"$map": bson.M{
				"input": "$price",
				"as":    "p",
				"in":    bson.M{"$ifNull": bson.A{"$$p.amount", 0}},
			}},
		}}}},
		Match{Predicate: bson.M{"$expr": bson.M{"$and": bounds}}},
	}
}

func sortKeys(opts ListOptions) bson.D {
	field := opts.Sort
	if field == SortByComments {
		field = "commentCount"
	}
	dir := 1
	if opts.Order == "desc" {
		dir = -1
	}
	keys := bson.D{{Key: field, Value: dir}}
	if field != "_id" {
		// Secondary key keeps page boundaries stable when the primary
		// sort values tie.
		keys = append(keys, bson.E{Key: "_id", Value: 1})
	}
	return keys
}

// enabledCommentCount counts joined comment documents whose deleted flag
// is false.
func enabledCommentCount() bson.M {
	return commentCountWhere(false)
}

func commentCountWhere(deleted bool) bson.M {
	return bson.M{"$size": bson.M{"$filter": bson.M{
		"input": "$" + commentLookupField,
		"as":    "c",
		"cond":  bson.M{"$eq": bson.A{"$$c.deleted", deleted}},
	}}}
}
