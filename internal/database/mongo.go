package database

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultMongoDatabase = "aura"

// ConnectMongo connects to MongoDB and returns the database named in the URI
// path, or "aura" when the URI names none.
func ConnectMongo(mongoURI string) (*mongo.Database, error) {
	// Use longer timeout for Atlas connections
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	log.Println("✅ Connected to MongoDB")
	return client.Database(MongoDatabaseName(mongoURI)), nil
}

// MongoDatabaseName extracts the database name from a connection string.
// Format: mongodb://.../database_name?...
func MongoDatabaseName(mongoURI string) string {
	rest := mongoURI
	if i := strings.Index(rest, "://"); i != -1 {
		rest = rest[i+3:]
	}
	i := strings.Index(rest, "/")
	if i == -1 {
		return defaultMongoDatabase
	}
	name := strings.Split(rest[i+1:], "?")[0]
	if name == "" {
		return defaultMongoDatabase
	}
	return name
}

// DisconnectMongo closes the client behind db.
func DisconnectMongo(db *mongo.Database) error {
	if db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return db.Client().Disconnect(ctx)
}
