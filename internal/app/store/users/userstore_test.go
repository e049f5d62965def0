package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	"github.com/findxvision/casewatch/internal/domain/models"
	"github.com/findxvision/casewatch/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func newStore(t *testing.T) (*userstore.Store, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	return store, db
}

func TestCreate_NormalizesFields(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{
		Email:       "  Mixed.Case@Example.COM ",
		FirstName:   " Jane ",
		LastName:    " Doe ",
		PhoneNumber: "+1 (555) 123-0000",
		Role:        models.RoleGeneralUser,
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.Email != "mixed.case@example.com" {
		t.Errorf("email: got %q", u.Email)
	}
	if u.PhoneNumber != "+15551230000" {
		t.Errorf("phone: got %q", u.PhoneNumber)
	}
	if u.FirstName != "Jane" || u.LastName != "Doe" {
		t.Errorf("name: got %q %q", u.FirstName, u.LastName)
	}
}

func TestCreate_RejectsUnknownRole(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{
		Email: "role@test.com",
		Role:  "SUPERVISOR",
	})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestCreate_DuplicateEmailCaseInsensitive(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{
		Email: "dup@test.com",
		Role:  models.RoleGeneralUser,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.User{
		Email: "DUP@TEST.COM",
		Role:  models.RoleGeneralUser,
	})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Fatalf("got %v, want ErrDuplicateEmail", err)
	}
}

func TestGetByEmail_FoldsCase(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Email: "lookup@test.com",
		Role:  models.RoleGeneralUser,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByEmail(ctx, " LOOKUP@Test.Com ")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Error("wrong user returned")
	}

	if _, err := store.GetByEmail(ctx, "nobody@test.com"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("missing user: got %v, want ErrNoDocuments", err)
	}
}

func TestLoginFailureLockout(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{
		Email:    "lockout@test.com",
		Role:     models.RoleGeneralUser,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 1; i <= userstore.MaxLoginAttempts; i++ {
		attempts, err := store.RecordLoginFailure(ctx, u.ID)
		if err != nil {
			t.Fatalf("RecordLoginFailure failed: %v", err)
		}
		if attempts != i {
			t.Fatalf("attempt %d: counter reports %d", i, attempts)
		}
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.LockUntil == nil || !got.LockUntil.After(time.Now()) {
		t.Fatal("account not locked after max failures")
	}

	// A successful login clears the counter and the lock.
	if err := store.RecordLoginSuccess(ctx, u.ID); err != nil {
		t.Fatalf("RecordLoginSuccess failed: %v", err)
	}
	got, err = store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.LoginAttempts != 0 {
		t.Errorf("login_attempts: got %d, want 0", got.LoginAttempts)
	}
	if got.LockUntil != nil {
		t.Error("lock_until not cleared")
	}
	if got.LastLoginAt == nil {
		t.Error("last_login_at not stamped")
	}
}

func TestActiveByRole_ExcludesInactive(t *testing.T) {
	store, db := newStore(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateOfficer(ctx, "On", "Duty", "active@pd.test")
	fx.CreateGeneralUser(ctx, "Not", "Police", "general@test.com")

	retired := fx.CreateOfficer(ctx, "Off", "Duty", "retired@pd.test")
	if err := store.SetActive(ctx, retired.ID, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	officers, err := store.ActiveByRole(ctx, models.RoleLawEnforcement)
	if err != nil {
		t.Fatalf("ActiveByRole failed: %v", err)
	}
	if len(officers) != 1 {
		t.Fatalf("got %d officers, want 1", len(officers))
	}
	if officers[0].Email != "active@pd.test" {
		t.Errorf("wrong officer: %q", officers[0].Email)
	}
}

func TestUpdateNotificationPrefs(t *testing.T) {
	store, db := newStore(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateGeneralUser(ctx, "Prefs", "User", "prefs@test.com")

	prefs := models.NotificationPrefs{InApp: true, Email: true, SMS: true}
	if err := store.UpdateNotificationPrefs(ctx, u.ID, prefs); err != nil {
		t.Fatalf("UpdateNotificationPrefs failed: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.NotificationPrefs != prefs {
		t.Errorf("prefs: got %+v, want %+v", got.NotificationPrefs, prefs)
	}
}
