package archive

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/humaxai2025/gputop/internal/domain"
)

// MongoArchiver implements SnapshotArchiver using MongoDB
type MongoArchiver struct {
	client     *mongo.Client
	database   string
	collection string
}

// NewMongoArchiver creates a new MongoDB-backed snapshot archiver
func NewMongoArchiver(mongoURI, database, collection string) (*MongoArchiver, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoArchiver{
		client:     client,
		database:   database,
		collection: collection,
	}, nil
}

// Store persists one snapshot in MongoDB
func (a *MongoArchiver) Store(ctx context.Context, snapshot domain.HealthSnapshot) error {
	coll := a.client.Database(a.database).Collection(a.collection)

	_, err := coll.InsertOne(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// GetByDevice retrieves archived snapshots for a device, ordered by
// sample timestamp
func (a *MongoArchiver) GetByDevice(ctx context.Context, device domain.DeviceID, filter TimeFilter) ([]domain.HealthSnapshot, error) {
	coll := a.client.Database(a.database).Collection(a.collection)

	queryFilter := bson.M{"device": device}

	if filter.StartTime != nil || filter.EndTime != nil {
		timeFilter := bson.M{}
		if filter.StartTime != nil {
			timeFilter["$gte"] = *filter.StartTime
		}
		if filter.EndTime != nil {
			timeFilter["$lte"] = *filter.EndTime
		}
		queryFilter["sample.timestamp"] = timeFilter
	}

	opts := options.Find().SetSort(bson.D{{Key: "sample.timestamp", Value: 1}})

	cursor, err := coll.Find(ctx, queryFilter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var results []domain.HealthSnapshot
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}

	return results, nil
}

// Count returns the total number of archived snapshots
func (a *MongoArchiver) Count(ctx context.Context) (int64, error) {
	coll := a.client.Database(a.database).Collection(a.collection)

	count, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}

	return count, nil
}

// Close disconnects from MongoDB
func (a *MongoArchiver) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}
