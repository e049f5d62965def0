package casestore_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/findxvision/casewatch/internal/app/policy/casepolicy"
	casestore "github.com/findxvision/casewatch/internal/app/store/cases"
	"github.com/findxvision/casewatch/internal/domain/models"
	"github.com/findxvision/casewatch/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func activity(userID primitive.ObjectID, typ, desc string) models.Activity {
	return models.Activity{
		Type:        typ,
		Description: desc,
		UserID:      &userID,
		Timestamp:   time.Now().UTC(),
	}
}

func TestApply_AppendsExactlyOneActivity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := casestore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := primitive.NewObjectID()
	c := f.CreateCase(ctx, "FXV-2026-000001", creator, false)

	err := store.Apply(ctx, c.ID,
		bson.M{"priority": models.PriorityHigh},
		activity(creator, models.ActivityOther, "Case details updated"))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	got, err := store.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Priority != models.PriorityHigh {
		t.Errorf("priority: got %q, want %q", got.Priority, models.PriorityHigh)
	}
	// One creation activity plus one update activity.
	if len(got.Activities) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(got.Activities))
	}
	if got.Activities[1].Type != models.ActivityOther {
		t.Errorf("activity type: got %q", got.Activities[1].Type)
	}
}

func TestApply_MissingCase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := casestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Apply(ctx, primitive.NewObjectID(), bson.M{"priority": models.PriorityLow},
		activity(primitive.NewObjectID(), models.ActivityOther, "update"))
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}

func TestConcurrentDisjointUpdates_BothLand(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := casestore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := primitive.NewObjectID()
	c := f.CreateCase(ctx, "FXV-2026-000002", creator, false)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = store.Apply(ctx, c.ID, bson.M{"priority": models.PriorityUrgent},
			activity(creator, models.ActivityOther, "priority changed"))
	}()
	go func() {
		defer wg.Done()
		errs[1] = store.Apply(ctx, c.ID, bson.M{"circumstances": "seen near campus"},
			activity(creator, models.ActivityOther, "circumstances changed"))
	}()
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("update %d failed: %v", i, err)
		}
	}

	got, err := store.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Priority != models.PriorityUrgent {
		t.Errorf("priority update lost: got %q", got.Priority)
	}
	if got.Circumstances != "seen near campus" {
		t.Errorf("circumstances update lost: got %q", got.Circumstances)
	}
	// Creation plus both concurrent updates.
	if len(got.Activities) != 3 {
		t.Errorf("expected 3 activities, got %d", len(got.Activities))
	}
}

func TestAddOfficer_DuplicateRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := casestore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := primitive.NewObjectID()
	officerID := primitive.NewObjectID()
	c := f.CreateCase(ctx, "FXV-2026-000003", creator, false)

	officer := models.Officer{
		UserID:     officerID,
		Role:       models.OfficerPrimary,
		AssignedAt: time.Now().UTC(),
	}
	if err := store.AddOfficer(ctx, c.ID, officer, activity(creator, models.ActivityOther, "Officer assigned"), creator); err != nil {
		t.Fatalf("first AddOfficer failed: %v", err)
	}

	err := store.AddOfficer(ctx, c.ID, officer, activity(creator, models.ActivityOther, "Officer assigned"), creator)
	if !errors.Is(err, casestore.ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}

	got, err := store.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.AssignedOfficers) != 1 {
		t.Errorf("expected 1 officer entry, got %d", len(got.AssignedOfficers))
	}
	// The rejected duplicate must not have appended an activity.
	if len(got.Activities) != 2 {
		t.Errorf("expected 2 activities, got %d", len(got.Activities))
	}
}

func TestAddOfficer_MissingCase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := casestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	officer := models.Officer{UserID: primitive.NewObjectID(), Role: models.OfficerSecondary, AssignedAt: time.Now()}
	err := store.AddOfficer(ctx, primitive.NewObjectID(), officer,
		activity(primitive.NewObjectID(), models.ActivityOther, "Officer assigned"), primitive.NewObjectID())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
}

func TestRemoveOfficer_NotAssigned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := casestore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := primitive.NewObjectID()
	c := f.CreateCase(ctx, "FXV-2026-000004", creator, false)

	err := store.RemoveOfficer(ctx, c.ID, primitive.NewObjectID(),
		activity(creator, models.ActivityOther, "Officer removed"), creator)
	if !errors.Is(err, casestore.ErrNotAssigned) {
		t.Fatalf("expected ErrNotAssigned, got %v", err)
	}
}

func TestList_VisibilityFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := casestore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	f.CreateCase(ctx, "FXV-2026-000010", owner, false)
	f.CreateCase(ctx, "FXV-2026-000011", owner, true)

	// The stranger sees only the public case.
	vis := casepolicy.VisibilityFilter(stranger, models.RoleGeneralUser)
	out, total, err := store.List(ctx, casestore.Filter{}, vis)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(out) != 1 {
		t.Fatalf("stranger: expected 1 visible case, got %d (total %d)", len(out), total)
	}
	if out[0].CaseNumber != "FXV-2026-000011" {
		t.Errorf("stranger sees wrong case: %s", out[0].CaseNumber)
	}

	// The owner sees both.
	vis = casepolicy.VisibilityFilter(owner, models.RoleGeneralUser)
	_, total, err = store.List(ctx, casestore.Filter{}, vis)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 {
		t.Errorf("owner: expected 2 visible cases, got %d", total)
	}

	// Law enforcement sees everything.
	vis = casepolicy.VisibilityFilter(stranger, models.RoleLawEnforcement)
	_, total, err = store.List(ctx, casestore.Filter{}, vis)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 {
		t.Errorf("law enforcement: expected 2 visible cases, got %d", total)
	}
}

func TestList_StatusFilterAndPaging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := casestore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		f.CreateCase(ctx, "FXV-2026-00002"+string(rune('0'+i)), owner, true)
	}

	out, total, err := store.List(ctx, casestore.Filter{Status: models.CaseStatusOpen, Limit: 2}, bson.M{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 3 {
		t.Errorf("total: got %d, want 3", total)
	}
	if len(out) != 2 {
		t.Errorf("page size: got %d, want 2", len(out))
	}
}

func TestStatistics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := casestore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	f.CreateCase(ctx, "FXV-2026-000030", owner, true)
	f.CreateCase(ctx, "FXV-2026-000031", owner, true)

	stats, err := store.Statistics(ctx, bson.M{})
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("total: got %d, want 2", stats.Total)
	}
	if stats.ByStatus[models.CaseStatusOpen] != 2 {
		t.Errorf("open count: got %d, want 2", stats.ByStatus[models.CaseStatusOpen])
	}
	if stats.ByPriority[models.PriorityMedium] != 2 {
		t.Errorf("medium count: got %d, want 2", stats.ByPriority[models.PriorityMedium])
	}
}

func TestAnonymizeCreatorAndPullParticipant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := casestore.New(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	subject := primitive.NewObjectID()
	other := primitive.NewObjectID()
	created := f.CreateCase(ctx, "FXV-2026-000040", subject, false)
	followed := f.CreateCase(ctx, "FXV-2026-000041", other, false)
	f.AddStakeholder(ctx, followed.ID, subject, models.StakeholderNotify{InApp: true})

	n, err := store.AnonymizeCreator(ctx, subject)
	if err != nil {
		t.Fatalf("AnonymizeCreator failed: %v", err)
	}
	if n != 1 {
		t.Errorf("anonymized: got %d, want 1", n)
	}
	if _, err := store.PullParticipant(ctx, subject); err != nil {
		t.Fatalf("PullParticipant failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CreatedBy != nil {
		t.Errorf("created_by not cleared: %v", got.CreatedBy)
	}
	if got.ReportedBy.Name != "[REDACTED]" {
		t.Errorf("reporter name not redacted: %q", got.ReportedBy.Name)
	}
	// Activities survive erasure.
	if len(got.Activities) == 0 {
		t.Error("activities were removed")
	}

	got, err = store.GetByID(ctx, followed.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Stakeholders) != 0 {
		t.Errorf("stakeholder entry not pulled: %d left", len(got.Stakeholders))
	}
}
