package pipeline

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"culturaviva-api/internal/models"
)

// Locale tables for bucket labels. Dashboards consume these labels as-is.
var (
	monthNames = bson.A{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	// Weekday labels are indexed by (day-1) mod 7, a fixed Monday-first
	// rotation over the day of month rather than a calendar weekday
	// lookup. Existing dashboards key on this label sequence, so it is
	// kept as-is.
	weekdayNames = bson.A{
		"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo",
	}
)

// Range tokens accepted by FilterDate. Anything else falls back to a
// year; that fallback is documented behavior, not an error.
const (
	RangeWeek        = "1w"
	RangeMonth       = "1m"
	RangeQuarter     = "3m"
	RangeHalfYear    = "6m"
	RangeNineMonths  = "9m"
	RangeYear        = "12m"
	DefaultStatRange = RangeYear
)

// NormalizeRange maps any unrecognized range token to the default.
// Callers use the normalized token for cache keys so equivalent requests
// share an entry.
func NormalizeRange(token string) string {
	switch token {
	case RangeWeek, RangeMonth, RangeQuarter, RangeHalfYear, RangeNineMonths, RangeYear:
		return token
	default:
		return DefaultStatRange
	}
}

// FilterDate compiles the time-bucketing pipeline for daily counter
// documents: match from the range's start date, group by year/month (and
// day for the short ranges), sort chronologically, and project labeled
// buckets. The 1w and 1m ranges bucket per day; longer ranges per month.
func FilterDate(rangeToken string) []Stage {
	return filterDateAt(rangeToken, time.Now())
}

func filterDateAt(rangeToken string, now time.Time) []Stage {
	var start time.Time
	switch rangeToken {
	case RangeWeek:
		start = now.AddDate(0, 0, -7)
	case RangeMonth:
		start = now.AddDate(0, -1, 0)
	case RangeQuarter:
		start = now.AddDate(0, -3, 0)
	case RangeHalfYear:
		start = now.AddDate(0, -6, 0)
	case RangeNineMonths:
		start = now.AddDate(0, -9, 0)
	default:
		start = now.AddDate(-1, 0, 0)
	}
	showDays := rangeToken == RangeWeek || rangeToken == RangeMonth

	// Counter date keys are fixed-width YYYY-MM-DD strings; slicing them
	// positionally sidesteps timezone and locale parsing entirely.
	groupID := bson.D{
		{Key: "year", Value: bson.M{"$substr": bson.A{"$date", 0, 4}}},
		{Key: "month", Value: bson.M{"$substr": bson.A{"$date", 5, 2}}},
	}
	sortKeys := bson.D{
		{Key: "_id.year", Value: 1},
		{Key: "_id.month", Value: 1},
	}
	if showDays {
		groupID = append(groupID, bson.E{Key: "day", Value: bson.M{"$substr": bson.A{"$date", 8, 2}}})
		sortKeys = append(sortKeys, bson.E{Key: "_id.day", Value: 1})
	}

	return []Stage{
		Match{Predicate: bson.M{"date": bson.M{"$gte": start.Format(models.CounterDateLayout)}}},
		Group{Spec: bson.D{
			{Key: "_id", Value: groupID},
			{Key: "total", Value: bson.M{"$sum": "$count"}},
		}},
		Sort{Keys: sortKeys},
		Project{Spec: bucketProjection(showDays)},
	}
}

func bucketProjection(showDays bool) bson.D {
	monthIndex := bson.M{"$subtract": bson.A{bson.M{"$toInt": "$_id.month"}, 1}}

	if !showDays {
		return bson.D{
			{Key: "_id", Value: 0},
			{Key: "id", Value: bson.M{"$concat": bson.A{"$_id.year", "-", "$_id.month"}}},
			{Key: "total", Value: 1},
			{Key: "name", Value: bson.M{"$arrayElemAt": bson.A{monthNames, monthIndex}}},
		}
	}

	dayNumber := bson.M{"$toInt": "$_id.day"}
	weekdayIndex := bson.M{"$mod": bson.A{
		bson.M{"$subtract": bson.A{dayNumber, 1}}, 7,
	}}
	return bson.D{
		{Key: "_id", Value: 0},
		{Key: "id", Value: bson.M{"$concat": bson.A{"$_id.year", "-", "$_id.month", "-", "$_id.day"}}},
		{Key: "total", Value: 1},
		{Key: "name", Value: bson.M{"$arrayElemAt": bson.A{weekdayNames, weekdayIndex}}},
		{Key: "number", Value: dayNumber},
	}
}

// CategoryBreakdown compiles a "group by category, count" pipeline over
// the items collection, optionally restricted to a reference set.
func CategoryBreakdown(ids []primitive.ObjectID, since *time.Time) []Stage {
	match := bson.M{}
	if ids != nil {
		match["_id"] = bson.M{"$in": ids}
	}
	if since != nil {
		match["startDate"] = bson.M{"$gte": *since}
	}
	return []Stage{
		Match{Predicate: match},
		Group{Spec: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "total", Value: bson.M{"$sum": 1}},
		}},
		Sort{Keys: bson.D{{Key: "total", Value: -1}}},
	}
}
