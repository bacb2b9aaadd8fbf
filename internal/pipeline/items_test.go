package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func float(v float64) *float64 { return &v }

func stageTypes(stages []Stage) []string {
	out := make([]string, 0, len(stages))
	for _, s := range stages {
		switch s.(type) {
		case Match:
			out = append(out, "match")
		case AddFields:
			out = append(out, "addFields")
		case Lookup:
			out = append(out, "lookup")
		case Group:
			out = append(out, "group")
		case Sort:
			out = append(out, "sort")
		case Skip:
			out = append(out, "skip")
		case Limit:
			out = append(out, "limit")
		case Project:
			out = append(out, "project")
		case Count:
			out = append(out, "count")
		}
	}
	return out
}

func findStage[T Stage](t *testing.T, stages []Stage) T {
	t.Helper()
	for _, s := range stages {
		if typed, ok := s.(T); ok {
			return typed
		}
	}
	var zero T
	t.Fatalf("stage %T not found", zero)
	return zero
}

func TestItemListingMinimalShape(t *testing.T) {
	stages := ItemListing(bson.M{}, ListOptions{Page: 1, Limit: 20})

	// No sort requested, no price bounds: match, id exposure, paginate,
	// project only.
	assert.Equal(t, []string{"match", "addFields", "skip", "limit", "project"}, stageTypes(stages))
}

func TestItemListingPaginationMath(t *testing.T) {
	stages := ItemListing(bson.M{}, ListOptions{Page: 3, Limit: 25})

	assert.Equal(t, int64(50), findStage[Skip](t, stages).N)
	assert.Equal(t, int64(25), findStage[Limit](t, stages).N)
}

func TestItemListingCommentSortJoinsAndCountsEnabledOnly(t *testing.T) {
	stages := ItemListing(bson.M{}, ListOptions{Sort: SortByComments, Order: "desc", Page: 1, Limit: 10})

	assert.Equal(t,
		[]string{"match", "addFields", "lookup", "addFields", "sort", "skip", "limit", "project"},
		stageTypes(stages))

	lookup := findStage[Lookup](t, stages)
	assert.Equal(t, "comments", lookup.From)
	assert.Equal(t, "commentDocs", lookup.As)

	// The count feeding the sort key must ignore soft-deleted comments.
	var countField bson.M
	for _, s := range stages {
		if af, ok := s.(AddFields); ok && af.Fields[0].Key == "commentCount" {
			countField = af.Fields[0].Value.(bson.M)
		}
	}
	filter := countField["$size"].(bson.M)["$filter"].(bson.M)
	assert.Equal(t, bson.M{"$eq": bson.A{"$$c.deleted", false}}, filter["cond"])

	sort := findStage[Sort](t, stages)
	assert.Equal(t, bson.D{
		{Key: "commentCount", Value: -1},
		{Key: "_id", Value: 1},
	}, sort.Keys)
}

func TestItemListingSortDirection(t *testing.T) {
	asc := findStage[Sort](t, ItemListing(bson.M{}, ListOptions{Sort: "title", Order: "asc", Page: 1, Limit: 10}))
	assert.Equal(t, 1, asc.Keys[0].Value)

	// Anything other than "desc" sorts ascending.
	def := findStage[Sort](t, ItemListing(bson.M{}, ListOptions{Sort: "title", Page: 1, Limit: 10}))
	assert.Equal(t, 1, def.Keys[0].Value)

	desc := findStage[Sort](t, ItemListing(bson.M{}, ListOptions{Sort: "title", Order: "desc", Page: 1, Limit: 10}))
	assert.Equal(t, -1, desc.Keys[0].Value)
}

func TestItemListingPriceRefinement(t *testing.T) {
	stages := ItemListing(bson.M{}, ListOptions{MinPrice: float(0), MaxPrice: float(10), Page: 1, Limit: 10})

	assert.Equal(t,
		[]string{"match", "addFields", "addFields", "match", "skip", "limit", "project"},
		stageTypes(stages))

	// minPrice treats a nil tier amount as 0.
	var minPrice bson.M
	for _, s := range stages {
		if af, ok := s.(AddFields); ok && af.Fields[0].Key == "minPrice" {
			minPrice = af.Fields[0].Value.(bson.M)
		}
	}
	mapped := minPrice["$min"].(bson.M)["$map"].(bson.M)
	assert.Equal(t, "$price", mapped["input"])
	assert.Equal(t, bson.M{"$ifNull": bson.A{"$$p.amount", 0}}, mapped["in"])

	// Both bounds land in one expression match.
	refinement := stages[3].(Match)
	expr := refinement.Predicate["$expr"].(bson.M)
	assert.Equal(t, []bson.M{
		{"$gte": bson.A{"$minPrice", 0.0}},
		{"$lte": bson.A{"$minPrice", 10.0}},
	}, expr["$and"].([]bson.M))
}

func TestItemListingSinglePriceBound(t *testing.T) {
	stages := ItemListing(bson.M{}, ListOptions{MaxPrice: float(5), Page: 1, Limit: 10})

	refinement := stages[3].(Match)
	bounds := refinement.Predicate["$expr"].(bson.M)["$and"].([]bson.M)
	assert.Len(t, bounds, 1)
	assert.Contains(t, bounds[0], "$lte")
}

func TestItemListingProjectionDropsBookkeeping(t *testing.T) {
	project := findStage[Project](t, ItemListing(bson.M{}, ListOptions{Page: 1, Limit: 10}))

	dropped := map[string]bool{}
	for _, e := range project.Spec {
		assert.Equal(t, 0, e.Value)
		dropped[e.Key] = true
	}
	assert.True(t, dropped["commentCount"])
	assert.True(t, dropped["minPrice"])
	assert.True(t, dropped["_id"])
	assert.True(t, dropped["__v"])
	assert.False(t, dropped["id"])
}

func TestItemCountMirrorsPriceRefinement(t *testing.T) {
	plain := ItemCount(bson.M{"category": "música"}, ListOptions{Page: 1, Limit: 10})
	assert.Equal(t, []string{"match", "count"}, stageTypes(plain))

	priced := ItemCount(bson.M{}, ListOptions{MaxPrice: float(10), Page: 1, Limit: 10})
	assert.Equal(t, []string{"match", "addFields", "match", "count"}, stageTypes(priced))
	assert.Equal(t, "total", findStage[Count](t, priced).As)
}
