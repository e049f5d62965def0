package workers_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/findxvision/casewatch/internal/app/notify"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	notifstore "github.com/findxvision/casewatch/internal/app/store/notifications"
	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	"github.com/findxvision/casewatch/internal/app/system/workers"
	"github.com/findxvision/casewatch/internal/domain/models"
	"github.com/findxvision/casewatch/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type flakySender struct {
	mu       sync.Mutex
	failures int
	sends    int
}

func (f *flakySender) Send(context.Context, string, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	if f.failures > 0 {
		f.failures--
		return errors.New("provider unavailable")
	}
	return nil
}

func (f *flakySender) Enabled() bool { return true }

func TestRetrySweep_RecoversFailedRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	rows := notifstore.New(db)
	users := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fx.CreateUserWithPrefs(ctx, "retry@test.com", models.RoleGeneralUser, "+15551230003",
		models.NotificationPrefs{InApp: true, SMS: true})

	row, err := rows.Insert(ctx, models.Notification{
		UserID:     user.ID,
		Type:       models.NotifyCaseUpdate,
		Channel:    models.ChannelSMS,
		Title:      "Case Update",
		Message:    "Retry me",
		DispatchID: "test-dispatch",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := rows.MarkFailed(ctx, row.ID, "provider unavailable"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	sms := &flakySender{}
	d := notify.NewDispatcher(users, rows, map[string]notify.Sender{models.ChannelSMS: sms}, zap.NewNop(), 0)
	w := workers.NewRetrySweep(rows, d, zap.NewNop(), time.Hour)

	w.Sweep()

	got, err := rows.GetByID(ctx, row.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.StatusSent {
		t.Errorf("status after sweep: got %q, want SENT", got.Status)
	}
	if got.RetryCount != 1 {
		t.Errorf("retry_count: got %d, want 1", got.RetryCount)
	}
}

func TestRetrySweep_StopsAtRetryBudget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	rows := notifstore.New(db)
	users := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fx.CreateUserWithPrefs(ctx, "retry@test.com", models.RoleGeneralUser, "+15551230004",
		models.NotificationPrefs{InApp: true, SMS: true})

	row, err := rows.Insert(ctx, models.Notification{
		UserID:     user.ID,
		Type:       models.NotifyCaseUpdate,
		Channel:    models.ChannelSMS,
		Title:      "Case Update",
		Message:    "Never delivers",
		DispatchID: "test-dispatch",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := rows.MarkFailed(ctx, row.ID, "provider unavailable"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	sms := &flakySender{failures: 100}
	d := notify.NewDispatcher(users, rows, map[string]notify.Sender{models.ChannelSMS: sms}, zap.NewNop(), 0)
	w := workers.NewRetrySweep(rows, d, zap.NewNop(), time.Hour)

	// More sweeps than the budget allows.
	for i := 0; i < models.DefaultMaxRetries+3; i++ {
		w.Sweep()
	}

	got, err := rows.GetByID(ctx, row.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.StatusFailed {
		t.Errorf("status: got %q, want FAILED", got.Status)
	}
	if got.RetryCount != models.DefaultMaxRetries {
		t.Errorf("retry_count: got %d, want %d", got.RetryCount, models.DefaultMaxRetries)
	}

	sms.mu.Lock()
	sends := sms.sends
	sms.mu.Unlock()
	if sends > models.DefaultMaxRetries {
		t.Errorf("sender called %d times, budget is %d", sends, models.DefaultMaxRetries)
	}
}

func TestAuditRetention_PurgesOldRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	fresh := models.AuditLog{
		UserID:    &userID,
		Action:    audit.ActionLoginSuccess,
		Resource:  models.AuditResourceAuth,
		Timestamp: time.Now(),
		Success:   true,
	}
	expired := models.AuditLog{
		UserID:    &userID,
		Action:    audit.ActionLoginSuccess,
		Resource:  models.AuditResourceAuth,
		Timestamp: time.Now().Add(-48 * time.Hour),
		Success:   true,
	}
	for _, row := range []models.AuditLog{fresh, expired} {
		if err := store.Log(ctx, row); err != nil {
			t.Fatalf("failed to insert audit row: %v", err)
		}
	}

	w := workers.NewAuditRetention(store, nil, zap.NewNop(), time.Hour, 24*time.Hour)
	w.Purge()

	rows, err := store.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows after purge: got %d, want 1", len(rows))
	}
	if rows[0].Timestamp.Before(time.Now().Add(-24 * time.Hour)) {
		t.Error("purge kept the expired row and deleted the fresh one")
	}
}

func TestWorkers_StartStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rows := notifstore.New(db)
	users := userstore.New(db)
	store := audit.New(db)

	d := notify.NewDispatcher(users, rows, nil, zap.NewNop(), 0)

	sweep := workers.NewRetrySweep(rows, d, zap.NewNop(), 10*time.Millisecond)
	sweep.Start()

	retention := workers.NewAuditRetention(store, nil, zap.NewNop(), 10*time.Millisecond, time.Hour)
	retention.Start()

	time.Sleep(30 * time.Millisecond)
	sweep.Stop()
	retention.Stop()
}
