package cases_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/findxvision/casewatch/internal/app/notify"
	"github.com/findxvision/casewatch/internal/app/services/cases"
	casestore "github.com/findxvision/casewatch/internal/app/store/cases"
	"github.com/findxvision/casewatch/internal/app/system/apperr"
	"github.com/findxvision/casewatch/internal/domain/models"
	"github.com/findxvision/casewatch/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// recordingEmitter captures emitted events instead of dispatching
// them.
type recordingEmitter struct {
	mu     sync.Mutex
	events []notify.Event
}

func (e *recordingEmitter) Emit(_ context.Context, ev notify.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *recordingEmitter) all() []notify.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]notify.Event(nil), e.events...)
}

func newService(t *testing.T, db *mongo.Database) (*cases.Service, *recordingEmitter) {
	t.Helper()
	emitter := &recordingEmitter{}
	return cases.New(casestore.New(db), emitter, zap.NewNop()), emitter
}

func validCreateInput() cases.CreateInput {
	return cases.CreateInput{
		MissingPerson: models.MissingPerson{
			FirstName: " Jane ",
			LastName:  " Doe ",
			Age:       30,
		},
		LastSeenLocation: models.Location{City: "Columbia", State: "MO", Country: "US"},
		ReportedBy: models.Contact{
			Name:         "Test Reporter",
			Relationship: "FAMILY",
			PhoneNumber:  "+15550000000",
		},
		IsPublic: true,
	}
}

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc, emitter := newService(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fx.CreateGeneralUser(ctx, "Report", "Er", "reporter@test.com")
	c, err := svc.Create(ctx, testutil.IdentityFor(user), validCreateInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !strings.HasPrefix(c.CaseNumber, "FXV-") {
		t.Errorf("case number: got %q", c.CaseNumber)
	}
	if c.Status != models.CaseStatusOpen {
		t.Errorf("status: got %q, want OPEN", c.Status)
	}
	if c.Priority != models.PriorityMedium {
		t.Errorf("priority: got %q, want MEDIUM", c.Priority)
	}
	if c.MissingPerson.FirstName != "Jane" || c.MissingPerson.LastName != "Doe" {
		t.Errorf("name not trimmed: %q %q", c.MissingPerson.FirstName, c.MissingPerson.LastName)
	}
	if len(c.Activities) != 1 {
		t.Fatalf("activities: got %d, want 1 creation entry", len(c.Activities))
	}
	if c.CreatedBy == nil || *c.CreatedBy != user.ID {
		t.Error("created_by not set to actor")
	}

	events := emitter.all()
	if len(events) != 1 || events[0].Type != notify.EventCaseCreated {
		t.Fatalf("events: got %+v, want one CASE_CREATED", events)
	}
}

func TestCreate_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc, emitter := newService(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := testutil.IdentityFor(fx.CreateGeneralUser(ctx, "Report", "Er", "reporter@test.com"))

	noName := validCreateInput()
	noName.MissingPerson.FirstName = "   "
	if _, err := svc.Create(ctx, id, noName); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("blank name: got %v, want ErrValidation", err)
	}

	badPriority := validCreateInput()
	badPriority.Priority = "EXTREME"
	if _, err := svc.Create(ctx, id, badPriority); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad priority: got %v, want ErrValidation", err)
	}

	if len(emitter.all()) != 0 {
		t.Error("rejected creates must not emit events")
	}
}

func TestGet_VisibilityMatchesRelationship(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc, _ := newService(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fx.CreateGeneralUser(ctx, "Case", "Creator", "creator@test.com")
	stranger := fx.CreateGeneralUser(ctx, "Total", "Stranger", "stranger@test.com")
	officer := fx.CreateOfficer(ctx, "Any", "Officer", "officer@pd.test")

	private := fx.CreateCase(ctx, "FXV-2026-000201", creator.ID, false)

	if _, err := svc.Get(ctx, testutil.IdentityFor(creator), private.ID); err != nil {
		t.Errorf("creator denied own case: %v", err)
	}
	if _, err := svc.Get(ctx, testutil.IdentityFor(officer), private.ID); err != nil {
		t.Errorf("law enforcement denied private case: %v", err)
	}

	// Forbidden is indistinguishable from absent.
	if _, err := svc.Get(ctx, testutil.IdentityFor(stranger), private.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("stranger on private case: got %v, want ErrNotFound", err)
	}
}

func TestGet_RedactsPrivateComments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc, _ := newService(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fx.CreateGeneralUser(ctx, "Case", "Creator", "creator@test.com")
	officer := fx.CreateOfficer(ctx, "Any", "Officer", "officer@pd.test")
	viewer := fx.CreateGeneralUser(ctx, "Public", "Viewer", "viewer@test.com")

	c := fx.CreateCase(ctx, "FXV-2026-000202", creator.ID, true)

	if _, err := svc.AddComment(ctx, testutil.IdentityFor(officer), c.ID, "visible to all", false); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if _, err := svc.AddComment(ctx, testutil.IdentityFor(officer), c.ID, "investigation detail", true); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	got, err := svc.Get(ctx, testutil.IdentityFor(viewer), c.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Comments) != 1 {
		t.Fatalf("public viewer sees %d comments, want 1", len(got.Comments))
	}
	if got.Comments[0].IsPrivate {
		t.Error("private comment leaked to public viewer")
	}

	got, err = svc.Get(ctx, testutil.IdentityFor(officer), c.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Comments) != 2 {
		t.Errorf("officer sees %d comments, want 2", len(got.Comments))
	}
}

func TestUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc, emitter := newService(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fx.CreateGeneralUser(ctx, "Case", "Creator", "creator@test.com")
	c := fx.CreateCase(ctx, "FXV-2026-000203", creator.ID, false)

	status := models.CaseStatusInvestigating
	priority := models.PriorityHigh
	updated, err := svc.Update(ctx, testutil.IdentityFor(creator), c.ID, cases.UpdateInput{
		Status:   &status,
		Priority: &priority,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != models.CaseStatusInvestigating || updated.Priority != models.PriorityHigh {
		t.Errorf("patch not applied: status=%q priority=%q", updated.Status, updated.Priority)
	}
	if len(updated.Activities) != 2 {
		t.Errorf("activities: got %d, want 2", len(updated.Activities))
	}
	if got := updated.Activities[len(updated.Activities)-1].Type; got != models.ActivityOther {
		t.Errorf("update activity type: got %q, want OTHER", got)
	}

	events := emitter.all()
	if len(events) != 1 || events[0].Type != notify.EventCaseUpdated {
		t.Fatalf("events: got %+v, want one CASE_UPDATED", events)
	}
	if len(events[0].ChangedFields) != 2 {
		t.Errorf("changed fields: got %v", events[0].ChangedFields)
	}
}

func TestUpdate_CannotSetStatusClosed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc, _ := newService(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	officer := fx.CreateOfficer(ctx, "Any", "Officer", "officer@pd.test")
	c := fx.CreateCase(ctx, "FXV-2026-000204", officer.ID, false)

	closed := models.CaseStatusClosed
	_, err := svc.Update(ctx, testutil.IdentityFor(officer), c.ID, cases.UpdateInput{Status: &closed})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("status=CLOSED via update: got %v, want ErrValidation", err)
	}
}

func TestUpdate_ClosedCaseIsImmutable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc, _ := newService(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	officer := fx.CreateOfficer(ctx, "Any", "Officer", "officer@pd.test")
	c := fx.CreateCase(ctx, "FXV-2026-000205", officer.ID, false)

	id := testutil.IdentityFor(officer)
	if _, err := svc.Close(ctx, id, c.ID, "found safe"); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	priority := models.PriorityLow
	if _, err := svc.Update(ctx, id, c.ID, cases.UpdateInput{Priority: &priority}); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("update after close: got %v, want ErrConflict", err)
	}
	if _, err := svc.AddComment(ctx, id, c.ID, "too late", false); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("comment after close: got %v, want ErrConflict", err)
	}
}

func TestClose(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc, emitter := newService(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fx.CreateGeneralUser(ctx, "Case", "Creator", "creator@test.com")
	officer := fx.CreateOfficer(ctx, "Any", "Officer", "officer@pd.test")
	c := fx.CreateCase(ctx, "FXV-2026-000206", creator.ID, true)

	// Creators cannot close their own case.
	if _, err := svc.Close(ctx, testutil.IdentityFor(creator), c.ID, ""); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("creator close: got %v, want ErrForbidden", err)
	}

	closed, err := svc.Close(ctx, testutil.IdentityFor(officer), c.ID, "found safe")
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if closed.Status != models.CaseStatusClosed {
		t.Errorf("status: got %q, want CLOSED", closed.Status)
	}
	if got := closed.Activities[len(closed.Activities)-1].Type; got != models.ActivityStatusChange {
		t.Errorf("closure activity type: got %q, want STATUS_CHANGE", got)
	}

	if _, err := svc.Close(ctx, testutil.IdentityFor(officer), c.ID, ""); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("double close: got %v, want ErrConflict", err)
	}

	var sawClosed bool
	for _, ev := range emitter.all() {
		if ev.Type == notify.EventCaseClosed {
			sawClosed = true
		}
	}
	if !sawClosed {
		t.Error("no CASE_CLOSED event emitted")
	}
}

func TestAddComment_PrivateDoesNotEmit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc, emitter := newService(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	officer := fx.CreateOfficer(ctx, "Any", "Officer", "officer@pd.test")
	c := fx.CreateCase(ctx, "FXV-2026-000207", officer.ID, false)
	id := testutil.IdentityFor(officer)

	if _, err := svc.AddComment(ctx, id, c.ID, "internal note", true); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if len(emitter.all()) != 0 {
		t.Fatal("private comment emitted an event")
	}

	if _, err := svc.AddComment(ctx, id, c.ID, "public note", false); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	events := emitter.all()
	if len(events) != 1 || events[0].Type != notify.EventCommentAdded {
		t.Fatalf("events: got %+v, want one COMMENT_ADDED", events)
	}
}

func TestAssignOfficer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc, emitter := newService(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateAdmin(ctx, "Case", "Admin", "admin@test.com")
	officer := fx.CreateOfficer(ctx, "Any", "Officer", "officer@pd.test")
	c := fx.CreateCase(ctx, "FXV-2026-000208", admin.ID, false)
	id := testutil.IdentityFor(admin)

	updated, err := svc.AssignOfficer(ctx, id, c.ID, officer.ID, models.OfficerPrimary)
	if err != nil {
		t.Fatalf("AssignOfficer failed: %v", err)
	}
	if len(updated.AssignedOfficers) != 1 {
		t.Fatalf("officers: got %d, want 1", len(updated.AssignedOfficers))
	}

	// Same user again, even under another role, is a conflict.
	_, err = svc.AssignOfficer(ctx, id, c.ID, officer.ID, models.OfficerConsultant)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate assign: got %v, want ErrConflict", err)
	}

	_, err = svc.AssignOfficer(ctx, id, c.ID, officer.ID, "CHIEF")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown role: got %v, want ErrValidation", err)
	}

	events := emitter.all()
	if len(events) != 1 || events[0].Type != notify.EventOfficerAssigned {
		t.Fatalf("events: got %+v, want one OFFICER_ASSIGNED", events)
	}
	if events[0].OfficerID != officer.ID {
		t.Error("event officer id mismatch")
	}
}

func TestRemoveOfficer_NotAssigned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc, emitter := newService(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateAdmin(ctx, "Case", "Admin", "admin@test.com")
	officer := fx.CreateOfficer(ctx, "Any", "Officer", "officer@pd.test")
	c := fx.CreateCase(ctx, "FXV-2026-000209", admin.ID, false)

	_, err := svc.RemoveOfficer(ctx, testutil.IdentityFor(admin), c.ID, officer.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("remove unassigned: got %v, want ErrNotFound", err)
	}
	if len(emitter.all()) != 0 {
		t.Error("failed removal emitted an event")
	}
}

func TestList_TotalHonorsVisibility(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	svc, _ := newService(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fx.CreateGeneralUser(ctx, "Case", "Creator", "creator@test.com")
	stranger := fx.CreateGeneralUser(ctx, "Total", "Stranger", "stranger@test.com")
	fx.CreateCase(ctx, "FXV-2026-000210", creator.ID, true)
	fx.CreateCase(ctx, "FXV-2026-000211", creator.ID, false)

	_, total, err := svc.List(ctx, testutil.IdentityFor(stranger), casestore.Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Errorf("stranger total: got %d, want 1", total)
	}

	_, total, err = svc.List(ctx, testutil.IdentityFor(creator), casestore.Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 {
		t.Errorf("creator total: got %d, want 2", total)
	}
}
