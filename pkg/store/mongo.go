package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo defaults.
const (
	DefaultMongoDatabase = "dashgrid"
	MongoCollection      = "boards"
)

// MongoStore keeps documents in the "boards" collection with the
// document ID as _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// NewMongoStore creates a store on an existing client. The client is
// owned by the caller.
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	if database == "" {
		database = DefaultMongoDatabase
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(MongoCollection)}
}

// ConnectMongo dials uri, verifies the connection and returns a store that
// disconnects the client on Close.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	s := NewMongoStore(client, database)
	s.owned = true
	return s, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (doc *Document, err error) {
	defer func() { loaded(ctx, "mongo", id, err) }()
	if err := validateID(id); err != nil {
		return nil, err
	}

	doc = &Document{}
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	return doc, nil
}

// Put upserts the document by _id.
func (s *MongoStore) Put(ctx context.Context, doc *Document) (err error) {
	id := ""
	if doc != nil {
		id = doc.ID
	}
	defer func() { saved(ctx, "mongo", id, 0, err) }()
	if err := validateDocument(doc); err != nil {
		return err
	}

	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo replace: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]*Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	var docs []*Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return docs, nil
}

// Close disconnects the client if ConnectMongo created it.
func (s *MongoStore) Close() error {
	if s.owned {
		return s.client.Disconnect(context.Background())
	}
	return nil
}

var _ Store = (*MongoStore)(nil)
