package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/findxvision/casewatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates an active test user with the given role. All
// channel prefs default to in-app only.
func (f *Fixtures) CreateUser(ctx context.Context, firstName, lastName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:                primitive.NewObjectID(),
		Email:             email,
		EmailCI:           text.Fold(email),
		FirstName:         firstName,
		LastName:          lastName,
		Role:              role,
		IsActive:          true,
		NotificationPrefs: models.NotificationPrefs{InApp: true},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateGeneralUser creates a GENERAL_USER account.
func (f *Fixtures) CreateGeneralUser(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, firstName, lastName, email, models.RoleGeneralUser)
}

// CreateOfficer creates a LAW_ENFORCEMENT account.
func (f *Fixtures) CreateOfficer(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, firstName, lastName, email, models.RoleLawEnforcement)
}

// CreateAdmin creates an ADMINISTRATOR account.
func (f *Fixtures) CreateAdmin(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, firstName, lastName, email, models.RoleAdministrator)
}

// CreateUserWithPrefs creates an active user with specific channel
// opt-ins and a phone number, for fan-out tests.
func (f *Fixtures) CreateUserWithPrefs(ctx context.Context, email, role, phone string, prefs models.NotificationPrefs) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:                primitive.NewObjectID(),
		Email:             email,
		EmailCI:           text.Fold(email),
		FirstName:         "Test",
		LastName:          "User",
		Role:              role,
		IsActive:          true,
		PhoneNumber:       phone,
		NotificationPrefs: prefs,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateInactiveUser creates a deactivated account.
func (f *Fixtures) CreateInactiveUser(ctx context.Context, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		EmailCI:   text.Fold(email),
		FirstName: "Inactive",
		LastName:  "User",
		Role:      models.RoleGeneralUser,
		IsActive:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create inactive test user: %v", err)
	}
	return user
}

// CreateCase inserts a minimal open case created by the given user.
// caseNumber must be unique within the test database.
func (f *Fixtures) CreateCase(ctx context.Context, caseNumber string, createdBy primitive.ObjectID, isPublic bool) models.Case {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Case{
		ID:         primitive.NewObjectID(),
		CaseNumber: caseNumber,
		Status:     models.CaseStatusOpen,
		Priority:   models.PriorityMedium,
		MissingPerson: models.MissingPerson{
			FirstName: "Jane",
			LastName:  "Doe",
			Age:       30,
		},
		LastSeenLocation: models.Location{
			City:    "Columbia",
			State:   "MO",
			Country: "US",
		},
		ReportedBy: models.Contact{
			Name:         "Test Reporter",
			Relationship: "FAMILY",
			PhoneNumber:  "+15550000000",
		},
		Images:           []models.CaseImage{},
		Stakeholders:     []models.Stakeholder{},
		AssignedOfficers: []models.Officer{},
		Comments:         []models.Comment{},
		IsPublic:         isPublic,
		CreatedBy:        &createdBy,
		LastUpdatedBy:    &createdBy,
		Activities: []models.Activity{
			{
				Type:        models.ActivityOther,
				Description: "Case created",
				UserID:      &createdBy,
				Timestamp:   now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("cases").InsertOne(ctx, c)
	if err != nil {
		f.t.Fatalf("failed to create test case: %v", err)
	}
	return c
}

// AddStakeholder appends a stakeholder entry directly to a case
// document.
func (f *Fixtures) AddStakeholder(ctx context.Context, caseID, userID primitive.ObjectID, notify models.StakeholderNotify) {
	f.t.Helper()

	sh := models.Stakeholder{
		UserID:  userID,
		Role:    models.StakeholderFamily,
		Notify:  notify,
		AddedAt: time.Now().UTC(),
	}
	_, err := f.db.Collection("cases").UpdateByID(ctx, caseID,
		map[string]any{"$push": map[string]any{"stakeholders": sh}})
	if err != nil {
		f.t.Fatalf("failed to add stakeholder: %v", err)
	}
}
