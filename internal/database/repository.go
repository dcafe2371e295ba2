package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no usage document matches.
var ErrNotFound = errors.New("usage record not found")

// UsageRepository provides operations on dispatch usage documents.
type UsageRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewUsageRepository wraps a usage collection.
func NewUsageRepository(collection *mongo.Collection) *UsageRepository {
	return &UsageRepository{collection: collection, now: time.Now}
}

// Insert stores one usage document.
func (r *UsageRepository) Insert(ctx context.Context, doc *UsageDocument) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = r.now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert usage record: %w", err)
	}
	return nil
}

// FindByRequestID returns the usage document of one request.
func (r *UsageRepository) FindByRequestID(ctx context.Context, requestID string) (*UsageDocument, error) {
	var doc UsageDocument
	err := r.collection.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get usage record: %w", err)
	}
	return &doc, nil
}

// ListBySession returns a session's most recent usage documents, newest first.
func (r *UsageRepository) ListBySession(ctx context.Context, sessionID string, limit int64) ([]UsageDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}
	docs := []UsageDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode usage records: %w", err)
	}
	return docs, nil
}

// SummarizeByProvider aggregates dispatches since the given time per provider.
func (r *UsageRepository) SummarizeByProvider(ctx context.Context, since time.Time) ([]ProviderSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"timestamp": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$provider"},
			{Key: "dispatches", Value: bson.M{"$sum": 1}},
			{Key: "failures", Value: bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$gte": bson.A{"$status_code", 400}}, 1, 0}}}},
			{Key: "fallbacks", Value: bson.M{"$sum": bson.M{"$cond": bson.A{"$is_fallback", 1, 0}}}},
			{Key: "jobs", Value: bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$gt": bson.A{"$job_id", nil}}, 1, 0}}}},
			{Key: "avg_duration_ms", Value: bson.M{"$avg": "$duration_ms"}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize usage: %w", err)
	}
	summaries := []ProviderSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode usage summary: %w", err)
	}
	return summaries, nil
}
