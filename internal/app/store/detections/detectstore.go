// internal/app/store/detections/detectstore.go
package detectstore

import (
	"context"
	"time"

	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("detections")}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "person_name", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert stores a detection event.
func (s *Store) Insert(ctx context.Context, d models.Detection) (models.Detection, error) {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Detection{}, err
	}
	return d, nil
}

// MarkNotified stamps the alert time on a detection.
func (s *Store) MarkNotified(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"notified_at": time.Now()}})
	return err
}

// Recent returns the latest detections, newest first.
func (s *Store) Recent(ctx context.Context, limit int64) ([]models.Detection, error) {
	if limit <= 0 {
		limit = 50
	}
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Detection
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
