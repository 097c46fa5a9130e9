// mongo_store.go - MongoDB settings slot

package settings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const settingsCollection = "plugin_settings"

// settingsDocument is the stored shape: one document per slot
type settingsDocument struct {
	Slot      string    `bson:"_id"`
	Settings  Settings  `bson:"settings"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps the settings in the plugin_settings collection
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	slot       string
}

// NewMongoStore connects to MongoDB and verifies the connection
func NewMongoStore(ctx context.Context, uri, dbName, slot string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Println("✅ Connected to MongoDB successfully!")

	return newMongoStoreWithCollection(client, client.Database(dbName).Collection(settingsCollection), slot), nil
}

func newMongoStoreWithCollection(client *mongo.Client, collection *mongo.Collection, slot string) *MongoStore {
	return &MongoStore{client: client, collection: collection, slot: slot}
}

func (m *MongoStore) Load(ctx context.Context) (*Settings, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc settingsDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": m.slot}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query settings slot %s: %w", m.slot, err)
	}
	return &doc.Settings, nil
}

func (m *MongoStore) Save(ctx context.Context, s *Settings) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := settingsDocument{
		Slot:      m.slot,
		Settings:  *s,
		UpdatedAt: time.Now(),
	}

	_, err := m.collection.ReplaceOne(ctx, bson.M{"_id": m.slot}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save settings slot %s: %w", m.slot, err)
	}
	return nil
}

// Close closes MongoDB connection
func (m *MongoStore) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		log.Printf("MongoDB disconnect failed: %v", err)
		return
	}
	log.Println("MongoDB connection closed")
}
