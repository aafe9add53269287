package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vacancydesk/backend/internal/models"
)

// MongoStore handles listing CRUD in MongoDB.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("listings")}
}

// EnsureIndexes creates the unique indexes the write paths depend on.
// Slug uniqueness backs the assigner's check-then-act probing; the
// partial index on source.url enforces uniqueness only among documents
// that carry one.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "source.url", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"source.url": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	return nil
}

// Insert stores a listing and returns its hex id. Unique-index
// violations (slug or source.url) surface as models.ErrConflict.
func (s *MongoStore) Insert(ctx context.Context, doc *models.Listing) (string, error) {
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}

	if _, err := s.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", models.ErrConflict
		}
		return "", fmt.Errorf("mongo insert: %w", err)
	}
	return doc.ID.Hex(), nil
}

// FindPage returns one page of listings matching filter, newest first,
// plus the total count ignoring pagination.
func (s *MongoStore) FindPage(ctx context.Context, filter bson.M, page, limit int64) ([]models.Listing, int64, error) {
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var docs []models.Listing
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// FindLatest returns the newest listings matching filter, capped at limit.
func (s *MongoStore) FindLatest(ctx context.Context, filter bson.M, limit int64) ([]models.Listing, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []models.Listing
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// FindBySlug returns models.ErrNotFound when no listing has the slug.
func (s *MongoStore) FindBySlug(ctx context.Context, slug string) (*models.Listing, error) {
	var doc models.Listing
	err := s.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByID returns models.ErrNotFound for malformed or unknown ids.
func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var doc models.Listing
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Update applies a partial $set to one listing. The caller builds the
// set document; updatedAt is stamped here.
func (s *MongoStore) Update(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}
	set["updatedAt"] = time.Now()

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrConflict
		}
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete hard-deletes one listing.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SlugExists reports whether any listing already holds the slug.
func (s *MongoStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"slug": slug}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Aggregate runs a grouped-count pipeline and decodes the buckets.
func (s *MongoStore) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.CountRow, error) {
	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.CountRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// StatsByType counts non-expired listings per type.
func (s *MongoStore) StatsByType(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isExpired": false}}},
		{{Key: "$group", Value: bson.M{"_id": "$type", "count": bson.M{"$sum": 1}}}},
	}
	rows, err := s.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64, len(rows))
	for _, r := range rows {
		stats[r.Key] = r.Count
	}
	return stats, nil
}
