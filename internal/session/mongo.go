package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/socialchef/gramz/internal/llm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultCollection = "sessions"

type sessionDocument struct {
	ID        string        `bson:"_id"`
	History   []llm.Message `bson:"history"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// MongoRepository stores one document per user in a MongoDB collection.
type MongoRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoRepository uses DefaultCollection when collectionName is empty.
func NewMongoRepository(db *mongo.Database, collectionName string) *MongoRepository {
	if collectionName == "" {
		collectionName = DefaultCollection
	}
	return &MongoRepository{
		collection: db.Collection(collectionName),
		now:        time.Now,
	}
}

// Connect opens a client for uri and checks it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("session: connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("session: ping mongodb: %w", err)
	}
	return client, nil
}

func (r *MongoRepository) Save(ctx context.Context, userID string, history []llm.Message) error {
	doc := sessionDocument{
		ID:        userID,
		History:   history,
		UpdatedAt: r.now().UTC(),
	}

	filter := bson.M{"_id": userID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("session: upsert %q: %w", userID, err)
	}
	return nil
}

func (r *MongoRepository) Load(ctx context.Context, userID string) ([]llm.Message, error) {
	var doc sessionDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: find %q: %w", userID, err)
	}
	return doc.History, nil
}

func (r *MongoRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		return fmt.Errorf("session: delete %q: %w", userID, err)
	}
	return nil
}
