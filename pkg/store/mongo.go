package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pystyle/pystyle/pkg/style"
)

// Sink receives finished style records. The JSON and CSV stores cover
// the file-based workflows; a Sink mirrors records somewhere queryable.
type Sink interface {
	Put(ctx context.Context, record style.Record) error
	Close(ctx context.Context) error
}

// MongoSink upserts one document per (repo, commit) so re-running a
// batch against the same commits stays idempotent.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ Sink = (*MongoSink)(nil)

const mongoConnectTimeout = 10 * time.Second

// NewMongoSink connects to uri and targets db/collection. The
// connection is verified with a ping before the sink is returned.
func NewMongoSink(ctx context.Context, uri, db, collection string) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping %s: %w", uri, err)
	}
	return &MongoSink{
		client: client,
		coll:   client.Database(db).Collection(collection),
	}, nil
}

// Put upserts record keyed by its repo and commit fields.
func (s *MongoSink) Put(ctx context.Context, record style.Record) error {
	filter := bson.M{
		"repo":   record["repo"],
		"commit": record["commit"],
	}
	update := bson.M{"$set": bson.M(record)}
	opts := options.Update().SetUpsert(true)
	if _, err := s.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("upsert %v: %w", record["repo"], err)
	}
	return nil
}

// Close disconnects from the server.
func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
