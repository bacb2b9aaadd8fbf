package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var statNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestFilterDateStartBoundaries(t *testing.T) {
	cases := []struct {
		token string
		want  string
	}{
		{"1w", "2025-06-08"},
		{"1m", "2025-05-15"},
		{"3m", "2025-03-15"},
		{"6m", "2024-12-15"},
		{"9m", "2024-09-15"},
		{"12m", "2024-06-15"},
	}

	for _, tc := range cases {
		stages := filterDateAt(tc.token, statNow)
		match := stages[0].(Match)
		assert.Equal(t, bson.M{"date": bson.M{"$gte": tc.want}}, match.Predicate, "range %s", tc.token)
	}
}

func TestFilterDateDailyRangesGroupByDay(t *testing.T) {
	for _, token := range []string{"1w", "1m"} {
		stages := filterDateAt(token, statNow)

		group := stages[1].(Group)
		id := group.Spec[0].Value.(bson.D)
		assert.Len(t, id, 3, "range %s", token)
		assert.Equal(t, "day", id[2].Key)
		assert.Equal(t, bson.M{"$substr": bson.A{"$date", 8, 2}}, id[2].Value)

		sort := stages[2].(Sort)
		assert.Equal(t, "_id.day", sort.Keys[2].Key)

		project := stages[3].(Project)
		keys := projectionKeys(project)
		assert.Contains(t, keys, "number", "range %s", token)
	}
}

func TestFilterDateMonthlyRangesGroupByMonth(t *testing.T) {
	for _, token := range []string{"3m", "6m", "9m", "12m"} {
		stages := filterDateAt(token, statNow)

		group := stages[1].(Group)
		id := group.Spec[0].Value.(bson.D)
		assert.Len(t, id, 2, "range %s", token)
		assert.Equal(t, "year", id[0].Key)
		assert.Equal(t, "month", id[1].Key)

		project := stages[3].(Project)
		assert.NotContains(t, projectionKeys(project), "number", "range %s", token)
	}
}

func TestFilterDateUnrecognizedTokenEqualsYear(t *testing.T) {
	for _, token := range []string{"", "2y", "garbage"} {
		assert.Equal(t,
			filterDateAt(RangeYear, statNow),
			filterDateAt(token, statNow),
			"token %q", token)
	}
}

func TestFilterDateGroupSumsCount(t *testing.T) {
	group := filterDateAt("12m", statNow)[1].(Group)
	assert.Equal(t, bson.M{"$sum": "$count"}, group.Spec[1].Value)
}

func TestFilterDateMonthlyProjection(t *testing.T) {
	project := filterDateAt("12m", statNow)[3].(Project)
	spec := projectionMap(project)

	assert.Equal(t, bson.M{"$concat": bson.A{"$_id.year", "-", "$_id.month"}}, spec["id"])

	// Month names are array-indexed by month-1.
	name := spec["name"].(bson.M)["$arrayElemAt"].(bson.A)
	assert.Equal(t, monthNames, name[0])
	assert.Equal(t, bson.M{"$subtract": bson.A{bson.M{"$toInt": "$_id.month"}, 1}}, name[1])
}

func TestFilterDateDailyProjection(t *testing.T) {
	project := filterDateAt("1w", statNow)[3].(Project)
	spec := projectionMap(project)

	assert.Equal(t, bson.M{"$concat": bson.A{"$_id.year", "-", "$_id.month", "-", "$_id.day"}}, spec["id"])
	assert.Equal(t, bson.M{"$toInt": "$_id.day"}, spec["number"])

	// Weekday labels rotate by (day-1) mod 7 over the day of month.
	name := spec["name"].(bson.M)["$arrayElemAt"].(bson.A)
	assert.Equal(t, weekdayNames, name[0])
	assert.Equal(t, bson.M{"$mod": bson.A{
		bson.M{"$subtract": bson.A{bson.M{"$toInt": "$_id.day"}, 1}}, 7,
	}}, name[1])
}

func TestLocaleTables(t *testing.T) {
	assert.Len(t, monthNames, 12)
	assert.Equal(t, "Enero", monthNames[0])
	assert.Equal(t, "Diciembre", monthNames[11])

	assert.Len(t, weekdayNames, 7)
	assert.Equal(t, "Lunes", weekdayNames[0])
	assert.Equal(t, "Domingo", weekdayNames[6])
}

func TestCategoryBreakdownShape(t *testing.T) {
	stages := CategoryBreakdown(nil, nil)
	assert.Equal(t, []string{"match", "group", "sort"}, stageTypes(stages))
	assert.Equal(t, bson.M{}, stages[0].(Match).Predicate)

	group := stages[1].(Group)
	assert.Equal(t, "$category", group.Spec[0].Value)
	assert.Equal(t, bson.M{"$sum": 1}, group.Spec[1].Value)
}

func TestCategoryBreakdownScoped(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID()}
	since := statNow

	match := CategoryBreakdown(ids, &since)[0].(Match)
	assert.Equal(t, bson.M{"$in": ids}, match.Predicate["_id"])
	assert.Equal(t, bson.M{"$gte": since}, match.Predicate["startDate"])
}

func projectionKeys(p Project) []string {
	keys := make([]string, 0, len(p.Spec))
	for _, e := range p.Spec {
		keys = append(keys, e.Key)
	}
	return keys
}

func projectionMap(p Project) map[string]interface{} {
	m := make(map[string]interface{}, len(p.Spec))
	for _, e := range p.Spec {
		m[e.Key] = e.Value
	}
	return m
}
