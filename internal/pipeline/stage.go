package pipeline

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Stage is one declarative step of an aggregation. Compilers in this
// package build []Stage values; Compile translates them to the MongoDB
// wire form in one place so the compilers stay testable without a
// database.
type Stage interface {
	isStage()
}

// Match filters documents with a plain query predicate.
type Match struct {
	Predicate bson.M
}

// AddFields attaches computed fields to each document.
type AddFields struct {
	Fields bson.D
}

// Lookup joins referenced documents from another collection into an array
// field named As.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
}

// Group buckets documents by the _id expression in Spec, accumulating the
// remaining entries.
type Group struct {
	Spec bson.D
}

// Sort orders documents by the given keys (1 ascending, -1 descending).
// Key order is significant.
type Sort struct {
	Keys bson.D
}

// Skip drops the first N documents.
type Skip struct {
	N int64
}

// Limit caps the result at N documents.
type Limit struct {
	N int64
}

// Project reshapes the output documents.
type Project struct {
	Spec bson.D
}

// Count replaces the stream with a single document holding the number of
// documents that reached it, under the field named As.
type Count struct {
	As string
}

func (Match) isStage()     {}
func (AddFields) isStage() {}
func (Lookup) isStage()    {}
func (Group) isStage()     {}
func (Sort) isStage()      {}
func (Skip) isStage()      {}
func (Limit) isStage()     {}
func (Project) isStage()   {}
func (Count) isStage()     {}

// Compile translates a stage list into a mongo.Pipeline.
func Compile(stages []Stage) mongo.Pipeline {
	p := make(mongo.Pipeline, 0, len(stages))
	for _, s := range stages {
		switch s := s.(type) {
		case Match:
			p = append(p, bson.D{{Key: "$match", Value: s.Predicate}})
		case AddFields:
			p = append(p, bson.D{{Key: "$addFields", Value: s.Fields}})
		case Lookup:
			p = append(p, bson.D{{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: s.From},
				{Key: "localField", Value: s.LocalField},
				{Key: "foreignField", Value: s.ForeignField},
				{Key: "as", Value: s.As},
			}}})
		case Group:
			p = append(p, bson.D{{Key: "$group", Value: s.Spec}})
		case Sort:
			p = append(p, bson.D{{Key: "$sort", Value: s.Keys}})
		case Skip:
			p = append(p, bson.D{{Key: "$skip", Value: s.N}})
		case Limit:
			p = append(p, bson.D{{Key: "$limit", Value: s.N}})
		case Project:
			p = append(p, bson.D{{Key: "$project", Value: s.Spec}})
		case Count:
			p = append(p, bson.D{{Key: "$count", Value: s.As}})
		}
	}
	return p
}
