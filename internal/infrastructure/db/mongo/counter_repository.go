package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionCounters = "counters"
	maxCounterAttempts = 3
)

// CounterRepository allocates values from named counters stored one document
// per sequence: {_id: <name>, seq: <last issued>}.
type CounterRepository struct {
	col   *mongo.Collection
	start int64
}

// NewCounterRepository returns an allocator whose sequences begin at start.
func NewCounterRepository(db *mongo.Database, start int64) *CounterRepository {
	return &CounterRepository{col: db.Collection(collectionCounters), start: start}
}

type counterDocument struct {
	Name string `bson:"_id"`
	Seq  int64  `bson:"seq"`
}

// Next increments the named counter with a single findAndModify and returns
// the new value. A missing counter is seeded with the start value; when two
// callers race to seed it, the loser's insert hits the _id unique constraint
// and it falls back to incrementing.
func (r *CounterRepository) Next(ctx context.Context, name string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for attempt := 0; attempt < maxCounterAttempts; attempt++ {
		var doc counterDocument
		err := r.col.FindOneAndUpdate(ctx,
			bson.M{"_id": name},
			bson.M{"$inc": bson.M{"seq": int64(1)}},
			opts,
		).Decode(&doc)
		if err == nil {
			return doc.Seq, nil
		}
		if !isNoDocuments(err) {
			return 0, fmt.Errorf("increment sequence %q: %w", name, err)
		}

		_, err = r.col.InsertOne(ctx, counterDocument{Name: name, Seq: r.start})
		if err == nil {
			return r.start, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("seed sequence %q: %w", name, err)
		}
	}

	return 0, fmt.Errorf("sequence %q: gave up after %d attempts", name, maxCounterAttempts)
}
