package cases_test

import (
	"context"
	"net/http"
	"testing"

	featcases "github.com/findxvision/casewatch/internal/app/features/cases"
	"github.com/findxvision/casewatch/internal/app/notify"
	casesvc "github.com/findxvision/casewatch/internal/app/services/cases"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	casestore "github.com/findxvision/casewatch/internal/app/store/cases"
	"github.com/findxvision/casewatch/internal/app/system/auditlog"
	"github.com/findxvision/casewatch/internal/domain/models"
	"github.com/findxvision/casewatch/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, notify.Event) {}

func newHandler(db *mongo.Database) (*featcases.Handler, *audit.Store) {
	auditStore := audit.New(db)
	recorder := auditlog.New(auditStore, zap.NewNop(), auditlog.Config{Auth: "db", Case: "db", Admin: "db"})
	svc := casesvc.New(casestore.New(db), nopEmitter{}, zap.NewNop())
	return featcases.NewHandler(svc, nil, recorder, zap.NewNop()), auditStore
}

func TestServeGet_DeniedReadIsAudited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h, auditStore := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fx.CreateGeneralUser(ctx, "Case", "Creator", "creator@test.com")
	stranger := fx.CreateGeneralUser(ctx, "Unrelated", "User", "stranger@test.com")
	c := fx.CreateCase(ctx, "FXV-2026-000301", creator.ID, false)

	req := testutil.NewAuthenticatedRequest(http.MethodGet, "/cases/"+c.ID.Hex(), testutil.IdentityFor(stranger))
	req = testutil.WithURLParam(req, "caseID", c.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeGet(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusNotFound)

	rows, err := auditStore.Query(ctx, audit.QueryFilter{Action: audit.ActionPermissionDenied})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("audit rows: got %d, want 1 denial", len(rows))
	}
	row := rows[0]
	if row.Success {
		t.Error("denial row recorded success=true")
	}
	if row.UserID == nil || *row.UserID != stranger.ID {
		t.Errorf("denial actor: got %v, want %s", row.UserID, stranger.ID.Hex())
	}
	if row.ResourceID != c.ID.Hex() {
		t.Errorf("denial resource id: got %q, want %q", row.ResourceID, c.ID.Hex())
	}

	// The denied read leaves the case ledger untouched.
	got, err := casestore.New(db).GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Activities) != len(c.Activities) {
		t.Errorf("activities: got %d, want %d", len(got.Activities), len(c.Activities))
	}
}

func TestServeUpdate_DeniedWriteIsAudited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	h, auditStore := newHandler(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fx.CreateGeneralUser(ctx, "Case", "Creator", "creator@test.com")
	family := fx.CreateGeneralUser(ctx, "Family", "Member", "family@test.com")
	c := fx.CreateCase(ctx, "FXV-2026-000302", creator.ID, false)
	fx.AddStakeholder(ctx, c.ID, family.ID, models.StakeholderNotify{})

	// Stakeholders can read the case but not modify it.
	req := testutil.NewJSONRequest(t, http.MethodPatch, "/cases/"+c.ID.Hex(), map[string]any{"priority": "LOW"})
	req = testutil.WithIdentity(req, testutil.IdentityFor(family))
	req = testutil.WithURLParam(req, "caseID", c.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeUpdate(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusForbidden)

	rows, err := auditStore.Query(ctx, audit.QueryFilter{Action: audit.ActionPermissionDenied})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("audit rows: got %d, want 1 denial", len(rows))
	}
	if rows[0].Success {
		t.Error("denial row recorded success=true")
	}
}
