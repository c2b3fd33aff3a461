package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEntry struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// MongoStore keeps entries in a MongoDB collection with a TTL index.
// MongoDB removes expired documents lazily, so reads filter on expires_at too.
type MongoStore struct {
	collection *mongo.Collection
	ttl        time.Duration
}

// NewMongoStore creates a store over the named collection and ensures its TTL
// index exists
func NewMongoStore(ctx context.Context, db *mongo.Database, name string, ttl time.Duration) (*MongoStore, error) {
	collection := db.Collection(name)
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create TTL index on %s: %w", name, err)
	}
	return &MongoStore{collection: collection, ttl: ttl}, nil
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry mongoEntry
	err := s.collection.FindOne(ctx, bson.M{
		"_id":        key,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry.Value, true, nil
}

func (s *MongoStore) Set(ctx context.Context, key string, value []byte) error {
	entry := mongoEntry{Key: key, Value: value, ExpiresAt: time.Now().Add(s.ttl)}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, entry, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (s *MongoStore) Flush(ctx context.Context) error {
	_, err := s.collection.DeleteMany(ctx, bson.D{})
	return err
}
