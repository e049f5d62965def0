// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Auth actions
const (
	ActionLoginSuccess     = "login_success"
	ActionLoginFailed      = "login_failed"
	ActionLoginLocked      = "login_locked"
	ActionLoginRateLimited = "login_rate_limited"
	ActionTokenRejected    = "token_rejected"
	ActionPermissionDenied = "permission_denied"
)

// Case actions
const (
	ActionCaseViewed      = "case_viewed"
	ActionCaseCreated     = "case_created"
	ActionCaseUpdated     = "case_updated"
	ActionCaseClosed      = "case_closed"
	ActionCommentAdded    = "comment_added"
	ActionOfficerAssigned = "officer_assigned"
	ActionOfficerRemoved  = "officer_removed"
	ActionImageUploaded   = "image_uploaded"
)

// Compliance and system actions
const (
	ActionDataExported      = "data_exported"
	ActionDataErased        = "data_erased"
	ActionDataRectified     = "data_rectified"
	ActionDetectionReceived = "detection_received"
	ActionRetentionPurge    = "retention_purge"
)

// QueryFilter defines filters for querying audit entries.
type QueryFilter struct {
	UserID    *primitive.ObjectID
	Action    string
	Resource  string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

func (f QueryFilter) query() bson.M {
	q := bson.M{}
	if f.UserID != nil {
		q["user_id"] = f.UserID
	}
	if f.Action != "" {
		q["action"] = f.Action
	}
	if f.Resource != "" {
		q["resource"] = f.Resource
	}
	if f.StartTime != nil || f.EndTime != nil {
		rng := bson.M{}
		if f.StartTime != nil {
			rng["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			rng["$lte"] = *f.EndTime
		}
		q["timestamp"] = rng
	}
	return q
}

// Store manages the append-only audit trail.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_logs")}
}

// EnsureIndexes creates necessary indexes for efficient querying.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// Query by time range (most recent first)
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
		// Query by user
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		// Query by action
		{
			Keys: bson.D{
				{Key: "resource", Value: 1},
				{Key: "action", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Log records an audit entry.
func (s *Store) Log(ctx context.Context, entry models.AuditLog) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	_, err := s.c.InsertOne(ctx, entry)
	return err
}

// Query retrieves audit entries matching the given filter.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]models.AuditLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, filter.query(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.AuditLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByFilter returns the count of entries matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.query())
}

// ListByUser returns every entry attributed to a user. Used by the
// compliance export.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.AuditLog, error) {
	return s.Query(ctx, QueryFilter{UserID: &userID, Limit: 10000})
}

// DeleteOlderThan removes entries past the retention horizon.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteUserOlderThan removes one user's entries past the retention
// horizon. Used by erasure before the remaining rows are detached.
func (s *Store) DeleteUserOlderThan(ctx context.Context, userID primitive.ObjectID, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"user_id":   userID,
		"timestamp": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DetachUser nulls the user reference on entries newer than the
// retention cutoff. Erasure keeps the security record but unlinks the
// person.
func (s *Store) DetachUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"user_id": userID},
		bson.M{"$unset": bson.M{"user_id": ""}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
