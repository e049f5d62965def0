// internal/app/notify/event.go
package notify

import (
	"context"
	"time"

	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Case transition events that trigger fan-out.
const (
	EventCaseCreated     = "CASE_CREATED"
	EventCaseUpdated     = "CASE_UPDATED"
	EventCaseClosed      = "CASE_CLOSED"
	EventCommentAdded    = "COMMENT_ADDED"
	EventOfficerAssigned = "OFFICER_ASSIGNED"
	EventOfficerRemoved  = "OFFICER_REMOVED"
)

// Event describes a committed case transition. The snapshot is the
// case as written, so recipient resolution never re-reads the store.
type Event struct {
	Type    string
	Case    *models.Case
	ActorID primitive.ObjectID

	// OfficerID is set for assignment and removal events.
	OfficerID primitive.ObjectID

	// ChangedFields carries the names of updated fields, never their
	// values.
	ChangedFields []string
}

// Emitter hands transition events to the notification pipeline.
// Implementations must never fail the mutation that emitted the
// event.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// AsyncEmitter dispatches on a detached goroutine so HTTP requests
// never wait on delivery channels.
type AsyncEmitter struct {
	Dispatcher *Dispatcher
	Log        *zap.Logger
	Timeout    time.Duration
}

// Emit hands the event off for background dispatch. The detached
// context keeps delivery alive after the request context is canceled.
func (e *AsyncEmitter) Emit(_ context.Context, ev Event) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := e.Dispatcher.Dispatch(ctx, ev); err != nil {
			e.Log.Error("notification dispatch failed",
				zap.String("event", ev.Type),
				zap.Error(err))
		}
	}()
}
