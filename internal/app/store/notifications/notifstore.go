// internal/app/store/notifications/notifstore.go
package notifstore

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
	return &Store{c: db.Collection("notifications")}
}

// EnsureIndexes creates indexes for per-user listing, the retry
// sweep, and dispatch-batch lookups.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "retry_count", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "dispatch_id", Value: 1}},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert stores a new notification row in PENDING state.
func (s *Store) Insert(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now
	if n.Status == "" {
		n.Status = models.StatusPending
	}
	if n.MaxRetries == 0 {
		n.MaxRetries = models.DefaultMaxRetries
	}
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// GetByID loads one notification row.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var n models.Notification
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkSent records a successful delivery. The filter only matches
// rows that have not already reached a terminal read state, keeping
// the status progression one-way.
func (s *Store) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": bson.A{models.StatusPending, models.StatusFailed}}},
		bson.M{"$set": bson.M{
			"status":        models.StatusSent,
			"sent_at":       now,
			"error_message": "",
			"updated_at":    now,
		}})
	return err
}

// MarkFailed records a delivery failure and bumps the retry counter.
func (s *Store) MarkFailed(ctx context.Context, id primitive.ObjectID, errMsg string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": bson.A{models.StatusPending, models.StatusFailed}}},
		bson.M{
			"$set": bson.M{
				"status":        models.StatusFailed,
				"error_message": errMsg,
				"updated_at":    time.Now(),
			},
			"$inc": bson.M{"retry_count": 1},
		})
	return err
}

// MarkRead stamps an in-app notification as read by its recipient.
// Scoping the filter by user prevents reading someone else's rows.
func (s *Store) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	now := time.Now()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID, "status": bson.M{"$ne": models.StatusRead}},
		bson.M{"$set": bson.M{"status": models.StatusRead, "read_at": now, "updated_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListByUser returns a user's notifications, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Notification, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	q := bson.M{"user_id": userID}
	cur, err := s.c.Find(ctx, q, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit))
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// CountUnread counts in-app rows the user has not read yet.
func (s *Store) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"channel": models.ChannelInApp,
		"status":  bson.M{"$ne": models.StatusRead},
	})
}

// FindRetryable returns FAILED rows that still have retry budget.
func (s *Store) FindRetryable(ctx context.Context, limit int64) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	cur, err := s.c.Find(ctx,
		bson.M{
			"status": models.StatusFailed,
			"$expr":  bson.M{"$lt": bson.A{"$retry_count", "$max_retries"}},
		},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByDispatch counts the rows created for one dispatch batch.
func (s *Store) CountByDispatch(ctx context.Context, dispatchID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"dispatch_id": dispatchID})
}

// ListByUserAll returns every row for a user. Used by the compliance
// export.
func (s *Store) ListByUserAll(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByUser removes every row for a user. Used by erasure.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
