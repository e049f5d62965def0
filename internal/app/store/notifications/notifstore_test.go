package notifstore_test

import (
	"errors"
	"testing"

	notifstore "github.com/findxvision/casewatch/internal/app/store/notifications"
	"github.com/findxvision/casewatch/internal/domain/models"
	"github.com/findxvision/casewatch/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func insertRow(t *testing.T, store *notifstore.Store, userID primitive.ObjectID, channel string) models.Notification {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, err := store.Insert(ctx, models.Notification{
		UserID:     userID,
		Type:       models.NotifyCaseUpdate,
		Channel:    channel,
		Title:      "Case Update",
		Message:    "Something changed",
		DispatchID: "test-dispatch",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	return n
}

func TestInsert_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifstore.New(db)

	n := insertRow(t, store, primitive.NewObjectID(), models.ChannelEmail)
	if n.Status != models.StatusPending {
		t.Errorf("status: got %q, want PENDING", n.Status)
	}
	if n.MaxRetries != models.DefaultMaxRetries {
		t.Errorf("max_retries: got %d, want %d", n.MaxRetries, models.DefaultMaxRetries)
	}
	if n.RetryCount != 0 {
		t.Errorf("retry_count: got %d, want 0", n.RetryCount)
	}
}

func TestStatusProgression_OneWay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	n := insertRow(t, store, userID, models.ChannelInApp)

	if err := store.MarkSent(ctx, n.ID); err != nil {
		t.Fatalf("MarkSent failed: %v", err)
	}
	if err := store.MarkRead(ctx, n.ID, userID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	// A read row cannot move back to SENT or FAILED.
	if err := store.MarkSent(ctx, n.ID); err != nil {
		t.Fatalf("MarkSent returned error: %v", err)
	}
	if err := store.MarkFailed(ctx, n.ID, "late failure"); err != nil {
		t.Fatalf("MarkFailed returned error: %v", err)
	}

	got, err := store.GetByID(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.StatusRead {
		t.Errorf("status regressed: got %q, want READ", got.Status)
	}
	if got.ReadAt == nil {
		t.Error("read_at not set")
	}
}

func TestMarkRead_ScopedToRecipient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	n := insertRow(t, store, owner, models.ChannelInApp)

	err := store.MarkRead(ctx, n.ID, primitive.NewObjectID())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments for foreign reader, got %v", err)
	}
}

func TestFindRetryable_RespectsBudget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	n := insertRow(t, store, userID, models.ChannelSMS)

	// Exhaust the retry budget.
	for i := 0; i < models.DefaultMaxRetries; i++ {
		rows, err := store.FindRetryable(ctx, 10)
		if err != nil {
			t.Fatalf("FindRetryable failed: %v", err)
		}
		if i == 0 {
			// Still PENDING: not retryable yet.
			if len(rows) != 0 {
				t.Fatalf("pending row reported retryable")
			}
		}
		if err := store.MarkFailed(ctx, n.ID, "send failed"); err != nil {
			t.Fatalf("MarkFailed failed: %v", err)
		}
	}

	rows, err := store.FindRetryable(ctx, 10)
	if err != nil {
		t.Fatalf("FindRetryable failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("row with exhausted budget reported retryable: retry_count=%d", rows[0].RetryCount)
	}

	got, err := store.GetByID(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.RetryCount != models.DefaultMaxRetries {
		t.Errorf("retry_count: got %d, want %d", got.RetryCount, models.DefaultMaxRetries)
	}
}

func TestCountUnread_InAppOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	insertRow(t, store, userID, models.ChannelInApp)
	insertRow(t, store, userID, models.ChannelEmail)

	n, err := store.CountUnread(ctx, userID)
	if err != nil {
		t.Fatalf("CountUnread failed: %v", err)
	}
	if n != 1 {
		t.Errorf("unread: got %d, want 1 (email rows do not count)", n)
	}
}

func TestListByUser_Paging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notifstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	for i := 0; i < 5; i++ {
		insertRow(t, store, userID, models.ChannelInApp)
	}
	insertRow(t, store, primitive.NewObjectID(), models.ChannelInApp)

	rows, total, err := store.ListByUser(ctx, userID, 0, 3)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if total != 5 {
		t.Errorf("total: got %d, want 5", total)
	}
	if len(rows) != 3 {
		t.Errorf("page: got %d rows, want 3", len(rows))
	}
}
