// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/findxvision/casewatch/internal/app/system/normalize"
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Lockout policy: five failed logins lock the account for two hours.
const (
	MaxLoginAttempts = 5
	LockDuration     = 2 * time.Hour
)

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "GENERAL_USER"|"LAW_ENFORCEMENT"|"ADMINISTRATOR"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the unique email index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.EmailCI = text.Fold(u.Email)
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.PhoneNumber = normalize.Phone(u.PhoneNumber)

	switch u.Role {
	case models.RoleGeneralUser, models.RoleLawEnforcement, models.RoleAdministrator:
		// ok
	default:
		return models.User{}, errBadRole
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ActiveByRole returns all active users with the given role. Used by
// the fan-out to find law-enforcement recipients for new cases.
func (s *Store) ActiveByRole(ctx context.Context, role string) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"role": role, "is_active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetMany loads the users for a set of IDs. Missing IDs are skipped.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// RecordLoginSuccess resets the failure counter and stamps the login.
func (s *Store) RecordLoginSuccess(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   bson.M{"login_attempts": 0, "last_login_at": now, "updated_at": now},
		"$unset": bson.M{"lock_until": ""},
	})
	return err
}

// RecordLoginFailure increments the failure counter and returns the
// new count. Reaching MaxLoginAttempts sets the lockout.
func (s *Store) RecordLoginFailure(ctx context.Context, id primitive.ObjectID) (int, error) {
	after := options.After
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"login_attempts": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&u)
	if err != nil {
		return 0, err
	}

	if u.LoginAttempts >= MaxLoginAttempts {
		until := time.Now().Add(LockDuration)
		_, err = s.c.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{
			"$set": bson.M{"lock_until": until, "updated_at": time.Now()},
		})
		if err != nil {
			return u.LoginAttempts, err
		}
	}
	return u.LoginAttempts, nil
}

// SetActive enables or disables an account.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"is_active": active, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdateNotificationPrefs replaces a user's channel opt-ins.
func (s *Store) UpdateNotificationPrefs(ctx context.Context, id primitive.ObjectID, prefs models.NotificationPrefs) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"notification_prefs": prefs, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Rectify updates the profile fields a user may correct about
// themselves.
func (s *Store) Rectify(ctx context.Context, id primitive.ObjectID, firstName, lastName, phone string) error {
	set := bson.M{"updated_at": time.Now()}
	if firstName != "" {
		set["first_name"] = normalize.Name(firstName)
	}
	if lastName != "" {
		set["last_name"] = normalize.Name(lastName)
	}
	if phone != "" {
		set["phone_number"] = normalize.Phone(phone)
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a user document. Used by the erasure path only.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
