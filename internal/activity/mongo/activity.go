package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/stagiaire-management/internal/activity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "activities"

type document struct {
	ObjectID   primitive.ObjectID `bson:"_id,omitempty"`
	EventID    string             `bson:"event_id"`
	Type       string             `bson:"type"`
	Entity     string             `bson:"entity"`
	EntityID   int64              `bson:"entity_id"`
	UserID     int64              `bson:"user_id"`
	Summary    string             `bson:"summary"`
	OccurredAt time.Time          `bson:"occurred_at"`
}

func toDocument(a *activity.Activity) document {
	return document{
		EventID:    a.ID,
		Type:       a.Type,
		Entity:     a.Entity,
		EntityID:   a.EntityID,
		UserID:     a.UserID,
		Summary:    a.Summary,
		OccurredAt: a.OccurredAt.UTC(),
	}
}

func (d document) toActivity() *activity.Activity {
	return &activity.Activity{
		ID:         d.EventID,
		Type:       d.Type,
		Entity:     d.Entity,
		EntityID:   d.EntityID,
		UserID:     d.UserID,
		Summary:    d.Summary,
		OccurredAt: d.OccurredAt,
	}
}

type Repository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{collection: db.Collection(CollectionName)}
}

var _ activity.RepositoryAPI = (*Repository)(nil)

// EnsureIndexes creates the unique event id index and the recency index.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "occurred_at", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create activity indexes: %w", err)
	}
	return nil
}

func (r *Repository) Record(ctx context.Context, a *activity.Activity) error {
	_, err := r.collection.InsertOne(ctx, toDocument(a))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]*activity.Activity, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]*activity.Activity, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.toActivity())
	}
	return result, nil
}

// Ping reports whether the server behind the collection is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if r.collection == nil {
		return errors.New("mongo activity store is not initialised")
	}
	return r.collection.Database().Client().Ping(ctx, nil)
}
