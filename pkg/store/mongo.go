package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sbgntools/sbgnmap/pkg/observability"
)

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and uses the "maps" collection of
// the given database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection("maps"),
	}, nil
}

// Put inserts or replaces a document by id.
func (s *MongoStore) Put(ctx context.Context, doc Document) error {
	if doc.Created.IsZero() {
		doc.Created = time.Now()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil {
		observability.Store().OnStoreError(ctx, "mongo", "put", err)
		return err
	}
	observability.Store().OnStorePut(ctx, "mongo", doc.ID, len(doc.Data))
	return nil
}

// Get retrieves a document by id.
func (s *MongoStore) Get(ctx context.Context, id string) (Document, error) {
	start := time.Now()
	var doc Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		observability.Store().OnStoreGet(ctx, "mongo", id, false, time.Since(start))
		return Document{}, ErrNotFound
	}
	if err != nil {
		observability.Store().OnStoreError(ctx, "mongo", "get", err)
		return Document{}, err
	}
	observability.Store().OnStoreGet(ctx, "mongo", id, true, time.Since(start))
	return doc, nil
}

// List returns all document metadata, sorted by name.
func (s *MongoStore) List(ctx context.Context) ([]Document, error) {
	opts := options.Find().
		SetProjection(bson.M{"data": 0}).
		SetSort(bson.M{"name": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		observability.Store().OnStoreError(ctx, "mongo", "list", err)
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []Document
	if err := cur.All(ctx, &docs); err != nil {
		observability.Store().OnStoreError(ctx, "mongo", "list", err)
		return nil, err
	}
	return docs, nil
}

// Delete removes a document.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		observability.Store().OnStoreError(ctx, "mongo", "delete", err)
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
