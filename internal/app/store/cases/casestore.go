// internal/app/store/cases/casestore.go
package casestore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateCaseNumber signals a collision on the unique case
	// number index. Callers regenerate the number and retry.
	ErrDuplicateCaseNumber = errors.New("case number already exists")

	// ErrAlreadyAssigned is returned when assigning an officer who is
	// already on the case.
	ErrAlreadyAssigned = errors.New("officer already assigned to this case")

	// ErrNotAssigned is returned when removing an officer who is not
	// on the case.
	ErrNotAssigned = errors.New("officer not assigned to this case")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("cases")}
}

// EnsureIndexes creates the case indexes.
//
// The text index backs free-text search over the missing person's
// name, case number, circumstances and tags; the 2dsphere index backs
// proximity queries on the GeoJSON mirror of the last-seen location.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "case_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "created_by", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "geo", Value: "2dsphere"}},
		},
		{
			Keys: bson.D{
				{Key: "missing_person.first_name", Value: "text"},
				{Key: "missing_person.last_name", Value: "text"},
				{Key: "case_number", Value: "text"},
				{Key: "circumstances", Value: "text"},
				{Key: "tags", Value: "text"},
			},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Insert stores a new case document.
func (s *Store) Insert(ctx context.Context, c models.Case) (models.Case, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Case{}, ErrDuplicateCaseNumber
		}
		return models.Case{}, err
	}
	return c, nil
}

// GetByID loads a case. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Case, error) {
	var c models.Case
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GeoNear describes a proximity filter on the last-seen location.
type GeoNear struct {
	Latitude  float64
	Longitude float64
	MaxMeters float64
}

// Filter holds the optional list/search criteria. Text and Near are
// mutually exclusive (Mongo cannot combine $text with $near); the
// service validates that before calling.
type Filter struct {
	Status   string
	Priority string
	Tags     []string
	From     *time.Time
	To       *time.Time
	Text     string
	Near     *GeoNear
	Skip     int64
	Limit    int64
}

func (f Filter) query() bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Priority != "" {
		q["priority"] = f.Priority
	}
	if len(f.Tags) > 0 {
		q["tags"] = bson.M{"$in": f.Tags}
	}
	if f.From != nil || f.To != nil {
		rng := bson.M{}
		if f.From != nil {
			rng["$gte"] = *f.From
		}
		if f.To != nil {
			rng["$lte"] = *f.To
		}
		q["created_at"] = rng
	}
	if f.Text != "" {
		q["$text"] = bson.M{"$search": f.Text}
	}
	if f.Near != nil {
		q["geo"] = bson.M{"$near": bson.M{
			"$geometry": bson.M{
				"type":        "Point",
				"coordinates": []float64{f.Near.Longitude, f.Near.Latitude},
			},
			"$maxDistance": f.Near.MaxMeters,
		}}
	}
	return q
}

// merge combines the filter query with the caller's visibility
// predicate. An empty visibility map means unrestricted.
func merge(q, visibility bson.M) bson.M {
	if len(visibility) == 0 {
		return q
	}
	if len(q) == 0 {
		return visibility
	}
	return bson.M{"$and": bson.A{q, visibility}}
}

// List returns cases matching the filter, restricted by the
// visibility predicate, newest first, plus the total count under the
// same predicate so pagination never leaks hidden cases.
func (s *Store) List(ctx context.Context, f Filter, visibility bson.M) ([]models.Case, int64, error) {
	q := merge(f.query(), visibility)

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().SetSkip(f.Skip).SetLimit(limit)
	// $near results come back in distance order; everything else is
	// newest first. countDocuments cannot run a $near query, so the
	// total is counted without the proximity clause.
	countQ := q
	if f.Near == nil {
		opts.SetSort(bson.D{{Key: "created_at", Value: -1}})
	} else {
		noNear := f
		noNear.Near = nil
		countQ = merge(noNear.query(), visibility)
	}

	cur, err := s.c.Find(ctx, q, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []models.Case
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}

	total, err := s.c.CountDocuments(ctx, countQ)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Apply performs a case mutation: $set the changed fields and $push
// exactly one activity entry, in a single atomic update. Concurrent
// mutations of disjoint fields both land and both activities survive.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, set bson.M, activity models.Activity) error {
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = time.Now()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":  set,
		"$push": bson.M{"activities": activity},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddComment appends a comment and its activity entry atomically.
func (s *Store) AddComment(ctx context.Context, id primitive.ObjectID, comment models.Comment, activity models.Activity, updatedBy primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"comments": comment, "activities": activity},
		"$set":  bson.M{"updated_at": time.Now(), "last_updated_by": updatedBy},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddOfficer appends an officer assignment and its activity entry.
// The filter excludes cases that already carry the officer, so a
// duplicate assignment never matches; read-then-write races cannot
// produce two entries for the same user.
func (s *Store) AddOfficer(ctx context.Context, id primitive.ObjectID, officer models.Officer, activity models.Activity, updatedBy primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "assigned_officers.user_id": bson.M{"$ne": officer.UserID}},
		bson.M{
			"$push": bson.M{"assigned_officers": officer, "activities": activity},
			"$set":  bson.M{"updated_at": time.Now(), "last_updated_by": updatedBy},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n == 0 {
			return mongo.ErrNoDocuments
		}
		return ErrAlreadyAssigned
	}
	return nil
}

// RemoveOfficer pulls an officer assignment and records the activity.
func (s *Store) RemoveOfficer(ctx context.Context, id, officerID primitive.ObjectID, activity models.Activity, updatedBy primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "assigned_officers.user_id": officerID},
		bson.M{
			"$pull": bson.M{"assigned_officers": bson.M{"user_id": officerID}},
			"$push": bson.M{"activities": activity},
			"$set":  bson.M{"updated_at": time.Now(), "last_updated_by": updatedBy},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n == 0 {
			return mongo.ErrNoDocuments
		}
		return ErrNotAssigned
	}
	return nil
}

// AddImage appends an image reference and its activity entry.
func (s *Store) AddImage(ctx context.Context, id primitive.ObjectID, img models.CaseImage, activity models.Activity, updatedBy primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"images": img, "activities": activity},
		"$set":  bson.M{"updated_at": time.Now(), "last_updated_by": updatedBy},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Stats summarizes visible cases.
type Stats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByPriority map[string]int64 `json:"by_priority"`
}

// Statistics aggregates counts by status and priority under the
// caller's visibility predicate.
func (s *Store) Statistics(ctx context.Context, visibility bson.M) (*Stats, error) {
	match := visibility
	if len(match) == 0 {
		match = bson.M{}
	}

	out := &Stats{
		ByStatus:   make(map[string]int64),
		ByPriority: make(map[string]int64),
	}

	countBy := func(field string, into map[string]int64) error {
		cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
			{{Key: "$match", Value: match}},
			{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		})
		if err != nil {
			return err
		}
		defer cur.Close(ctx)

		var rows []struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.All(ctx, &rows); err != nil {
			return err
		}
		for _, row := range rows {
			into[row.ID] = row.Count
		}
		return nil
	}

	if err := countBy("status", out.ByStatus); err != nil {
		return nil, err
	}
	if err := countBy("priority", out.ByPriority); err != nil {
		return nil, err
	}

	total, err := s.c.CountDocuments(ctx, match)
	if err != nil {
		return nil, err
	}
	out.Total = total
	return out, nil
}

// FindByParticipant returns cases where the user is creator,
// stakeholder, or assigned officer. Used by the compliance export.
func (s *Store) FindByParticipant(ctx context.Context, userID primitive.ObjectID) ([]models.Case, error) {
	cur, err := s.c.Find(ctx, bson.M{"$or": bson.A{
		bson.M{"created_by": userID},
		bson.M{"stakeholders.user_id": userID},
		bson.M{"assigned_officers.user_id": userID},
	}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Case
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AnonymizeCreator strips authorship from cases the user created:
// created_by is unset and the reporter contact is redacted. Case
// facts, activities and comments stay intact.
func (s *Store) AnonymizeCreator(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx, bson.M{"created_by": userID}, bson.M{
		"$unset": bson.M{"created_by": ""},
		"$set": bson.M{
			"reported_by.name":         "[REDACTED]",
			"reported_by.phone_number": "",
			"reported_by.email":        "",
			"updated_at":               time.Now(),
		},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// PullParticipant removes the user from stakeholder and officer lists
// on every case.
func (s *Store) PullParticipant(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"$or": bson.A{
			bson.M{"stakeholders.user_id": userID},
			bson.M{"assigned_officers.user_id": userID},
		}},
		bson.M{
			"$pull": bson.M{
				"stakeholders":      bson.M{"user_id": userID},
				"assigned_officers": bson.M{"user_id": userID},
			},
			"$set": bson.M{"updated_at": time.Now()},
		})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
