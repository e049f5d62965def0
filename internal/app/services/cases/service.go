// internal/app/services/cases/service.go
package cases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/findxvision/casewatch/internal/app/notify"
	"github.com/findxvision/casewatch/internal/app/policy/casepolicy"
	casestore "github.com/findxvision/casewatch/internal/app/store/cases"
	"github.com/findxvision/casewatch/internal/app/system/apperr"
	"github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/app/system/casenumber"
	"github.com/findxvision/casewatch/internal/app/system/htmlsanitize"
	"github.com/findxvision/casewatch/internal/app/system/normalize"
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// caseNumberAttempts bounds regeneration on unique-index collisions.
const caseNumberAttempts = 5

// Service implements the case aggregate: every mutation checks the
// policy, lands atomically with exactly one activity entry, and emits
// its transition event only after the write succeeds.
type Service struct {
	store   *casestore.Store
	emitter notify.Emitter
	log     *zap.Logger
}

// New creates the case service.
func New(store *casestore.Store, emitter notify.Emitter, log *zap.Logger) *Service {
	return &Service{store: store, emitter: emitter, log: log}
}

func activityEntry(actorID primitive.ObjectID, typ, description string, metadata map[string]any) models.Activity {
	return models.Activity{
		Type:        typ,
		Description: description,
		UserID:      &actorID,
		Timestamp:   time.Now(),
		Metadata:    metadata,
	}
}

// loadReadable fetches a case the actor may view. Absent and
// forbidden are indistinguishable to the caller.
func (s *Service) loadReadable(ctx context.Context, id auth.Identity, caseID primitive.ObjectID) (*models.Case, error) {
	c, err := s.store.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if !casepolicy.CanRead(c, id.ActorID, id.Role) {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

// loadWritable fetches a case the actor may modify.
func (s *Service) loadWritable(ctx context.Context, id auth.Identity, caseID primitive.ObjectID) (*models.Case, error) {
	c, err := s.loadReadable(ctx, id, caseID)
	if err != nil {
		return nil, err
	}
	if !casepolicy.CanWrite(c, id.ActorID, id.Role) {
		return nil, apperr.ErrForbidden
	}
	return c, nil
}

// redactComments strips comments the actor may not see from a loaded
// case before it leaves the service.
func redactComments(c *models.Case, id auth.Identity) *models.Case {
	if len(c.Comments) == 0 {
		return c
	}
	visible := make([]models.Comment, 0, len(c.Comments))
	for _, cm := range c.Comments {
		if casepolicy.CanSeeComment(c, cm, id.ActorID, id.Role) {
			visible = append(visible, cm)
		}
	}
	c.Comments = visible
	return c
}

// CreateInput carries the fields accepted on case creation.
type CreateInput struct {
	MissingPerson     models.MissingPerson
	LastSeenLocation  models.Location
	LastSeenDate      *time.Time
	Circumstances     string
	Priority          string
	ReportedBy        models.Contact
	EmergencyContacts []models.Contact
	Tags              []string
	IsPublic          bool
	PublicDescription string
}

// Create registers a new case. The creation activity is embedded in
// the inserted document, and the broadcast event fires only after the
// insert commits.
func (s *Service) Create(ctx context.Context, id auth.Identity, in CreateInput) (*models.Case, error) {
	in.MissingPerson.FirstName = normalize.Name(in.MissingPerson.FirstName)
	in.MissingPerson.LastName = normalize.Name(in.MissingPerson.LastName)
	if in.MissingPerson.FirstName == "" || in.MissingPerson.LastName == "" {
		return nil, fmt.Errorf("%w: missing person name is required", apperr.ErrValidation)
	}
	if in.ReportedBy.Name == "" {
		return nil, fmt.Errorf("%w: reporter contact is required", apperr.ErrValidation)
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	switch priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
	default:
		return nil, fmt.Errorf("%w: unknown priority %q", apperr.ErrValidation, in.Priority)
	}

	now := time.Now()
	actorID := id.ActorID
	c := models.Case{
		Status:            models.CaseStatusOpen,
		Priority:          priority,
		MissingPerson:     in.MissingPerson,
		LastSeenLocation:  in.LastSeenLocation,
		LastSeenDate:      in.LastSeenDate,
		Circumstances:     htmlsanitize.Strict(in.Circumstances),
		Images:            []models.CaseImage{},
		ReportedBy:        in.ReportedBy,
		EmergencyContacts: in.EmergencyContacts,
		Stakeholders:      []models.Stakeholder{},
		AssignedOfficers:  []models.Officer{},
		Comments:          []models.Comment{},
		Tags:              in.Tags,
		IsPublic:          in.IsPublic,
		PublicDescription: htmlsanitize.Sanitize(in.PublicDescription),
		CreatedBy:         &actorID,
		LastUpdatedBy:     &actorID,
		CreatedAt:         now,
		UpdatedAt:         now,
		Activities: []models.Activity{
			activityEntry(actorID, models.ActivityOther, "Case created", nil),
		},
	}
	if in.LastSeenLocation.Coordinates != nil {
		c.Geo = models.NewGeoPoint(*in.LastSeenLocation.Coordinates)
	}

	// The unique index arbitrates case numbers; collisions get a
	// fresh number and another attempt.
	var created models.Case
	var err error
	for attempt := 0; attempt < caseNumberAttempts; attempt++ {
		c.CaseNumber = casenumber.Generate(now)
		created, err = s.store.Insert(ctx, c)
		if err == nil {
			break
		}
		if !errors.Is(err, casestore.ErrDuplicateCaseNumber) {
			return nil, err
		}
	}
	if err != nil {
		return nil, fmt.Errorf("allocate case number: %w", err)
	}

	s.emitter.Emit(ctx, notify.Event{
		Type:    notify.EventCaseCreated,
		Case:    &created,
		ActorID: actorID,
	})
	return &created, nil
}

// Get returns a case visible to the actor, with comments the actor
// may not see removed.
func (s *Service) Get(ctx context.Context, id auth.Identity, caseID primitive.ObjectID) (*models.Case, error) {
	c, err := s.loadReadable(ctx, id, caseID)
	if err != nil {
		return nil, err
	}
	return redactComments(c, id), nil
}

// List returns cases matching the filter that the actor may see,
// plus the total under the same visibility so pagination is honest.
func (s *Service) List(ctx context.Context, id auth.Identity, f casestore.Filter) ([]models.Case, int64, error) {
	if f.Text != "" && f.Near != nil {
		return nil, 0, fmt.Errorf("%w: text search and proximity cannot be combined", apperr.ErrValidation)
	}
	visibility := casepolicy.VisibilityFilter(id.ActorID, id.Role)
	out, total, err := s.store.List(ctx, f, visibility)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		redactComments(&out[i], id)
	}
	return out, total, nil
}

// UpdateInput carries the patchable case fields. Nil pointers leave
// the stored value untouched.
type UpdateInput struct {
	Status            *string
	Priority          *string
	MissingPerson     *models.MissingPerson
	LastSeenLocation  *models.Location
	LastSeenDate      *time.Time
	Circumstances     *string
	Tags              *[]string
	IsPublic          *bool
	PublicDescription *string
}

// Update patches the provided fields. The activity entry names the
// changed fields but never records their values.
func (s *Service) Update(ctx context.Context, id auth.Identity, caseID primitive.ObjectID, in UpdateInput) (*models.Case, error) {
	c, err := s.loadWritable(ctx, id, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == models.CaseStatusClosed {
		return nil, fmt.Errorf("%w: case is closed", apperr.ErrConflict)
	}

	set := bson.M{"last_updated_by": id.ActorID}
	var changed []string

	if in.Status != nil {
		switch *in.Status {
		case models.CaseStatusOpen, models.CaseStatusInvestigating, models.CaseStatusResolved:
		case models.CaseStatusClosed:
			return nil, fmt.Errorf("%w: use the close operation to close a case", apperr.ErrValidation)
		default:
			return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, *in.Status)
		}
		set["status"] = *in.Status
		changed = append(changed, "status")
	}
	if in.Priority != nil {
		switch *in.Priority {
		case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
		default:
			return nil, fmt.Errorf("%w: unknown priority %q", apperr.ErrValidation, *in.Priority)
		}
		set["priority"] = *in.Priority
		changed = append(changed, "priority")
	}
	if in.MissingPerson != nil {
		set["missing_person"] = *in.MissingPerson
		changed = append(changed, "missing_person")
	}
	if in.LastSeenLocation != nil {
		set["last_seen_location"] = *in.LastSeenLocation
		if in.LastSeenLocation.Coordinates != nil {
			set["geo"] = models.NewGeoPoint(*in.LastSeenLocation.Coordinates)
		}
		changed = append(changed, "last_seen_location")
	}
	if in.LastSeenDate != nil {
		set["last_seen_date"] = *in.LastSeenDate
		changed = append(changed, "last_seen_date")
	}
	if in.Circumstances != nil {
		set["circumstances"] = htmlsanitize.Strict(*in.Circumstances)
		changed = append(changed, "circumstances")
	}
	if in.Tags != nil {
		set["tags"] = *in.Tags
		changed = append(changed, "tags")
	}
	if in.IsPublic != nil {
		set["is_public"] = *in.IsPublic
		changed = append(changed, "is_public")
	}
	if in.PublicDescription != nil {
		set["public_description"] = htmlsanitize.Sanitize(*in.PublicDescription)
		changed = append(changed, "public_description")
	}

	if len(changed) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", apperr.ErrValidation)
	}

	activity := activityEntry(id.ActorID, models.ActivityOther, "Case details updated",
		map[string]any{"fields": changed})
	if err := s.store.Apply(ctx, caseID, set, activity); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	updated, err := s.store.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, notify.Event{
		Type:          notify.EventCaseUpdated,
		Case:          updated,
		ActorID:       id.ActorID,
		ChangedFields: changed,
	})
	return redactComments(updated, id), nil
}

// Close marks a case CLOSED. This is the only deletion path; the
// document and its ledger stay in the collection.
func (s *Service) Close(ctx context.Context, id auth.Identity, caseID primitive.ObjectID, reason string) (*models.Case, error) {
	c, err := s.loadReadable(ctx, id, caseID)
	if err != nil {
		return nil, err
	}
	if !casepolicy.CanClose(id.Role) {
		return nil, apperr.ErrForbidden
	}
	if c.Status == models.CaseStatusClosed {
		return nil, fmt.Errorf("%w: case already closed", apperr.ErrConflict)
	}

	desc := "Case closed"
	if reason = htmlsanitize.Strict(reason); reason != "" {
		desc = "Case closed: " + reason
	}
	activity := activityEntry(id.ActorID, models.ActivityStatusChange, desc, nil)
	set := bson.M{"status": models.CaseStatusClosed, "last_updated_by": id.ActorID}
	if err := s.store.Apply(ctx, caseID, set, activity); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	closed, err := s.store.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, notify.Event{
		Type:    notify.EventCaseClosed,
		Case:    closed,
		ActorID: id.ActorID,
	})
	return redactComments(closed, id), nil
}

// AddComment appends a comment. Private comments never fan out.
func (s *Service) AddComment(ctx context.Context, id auth.Identity, caseID primitive.ObjectID, content string, isPrivate bool) (*models.Comment, error) {
	c, err := s.loadReadable(ctx, id, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == models.CaseStatusClosed {
		return nil, fmt.Errorf("%w: case is closed", apperr.ErrConflict)
	}

	content = htmlsanitize.Strict(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", apperr.ErrValidation)
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    id.ActorID,
		Content:   content,
		IsPrivate: isPrivate,
		CreatedAt: time.Now(),
	}
	activity := activityEntry(id.ActorID, models.ActivityNoteAdded, "Comment added",
		map[string]any{"is_private": isPrivate})
	if err := s.store.AddComment(ctx, caseID, comment, activity, id.ActorID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	if !isPrivate {
		s.emitter.Emit(ctx, notify.Event{
			Type:    notify.EventCommentAdded,
			Case:    c,
			ActorID: id.ActorID,
		})
	}
	return &comment, nil
}

// AssignOfficer adds an investigating officer. A user already on the
// case is a conflict regardless of requested role; the guard lives in
// the store filter, so concurrent assigns cannot double up.
func (s *Service) AssignOfficer(ctx context.Context, id auth.Identity, caseID, officerID primitive.ObjectID, role string) (*models.Case, error) {
	c, err := s.loadWritable(ctx, id, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == models.CaseStatusClosed {
		return nil, fmt.Errorf("%w: case is closed", apperr.ErrConflict)
	}
	if role == "" {
		role = models.OfficerSecondary
	}
	switch role {
	case models.OfficerPrimary, models.OfficerSecondary, models.OfficerConsultant:
	default:
		return nil, fmt.Errorf("%w: unknown officer role %q", apperr.ErrValidation, role)
	}

	officer := models.Officer{UserID: officerID, Role: role, AssignedAt: time.Now()}
	activity := activityEntry(id.ActorID, models.ActivityOther, "Officer assigned to case",
		map[string]any{"officer_id": officerID.Hex(), "officer_role": role})
	if err := s.store.AddOfficer(ctx, caseID, officer, activity, id.ActorID); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, apperr.ErrNotFound
		case errors.Is(err, casestore.ErrAlreadyAssigned):
			return nil, fmt.Errorf("%w: officer already assigned", apperr.ErrConflict)
		}
		return nil, err
	}

	updated, err := s.store.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, notify.Event{
		Type:      notify.EventOfficerAssigned,
		Case:      updated,
		ActorID:   id.ActorID,
		OfficerID: officerID,
	})
	return redactComments(updated, id), nil
}

// RemoveOfficer removes an assignment. Removing an officer who is
// not on the case is a not-found error.
func (s *Service) RemoveOfficer(ctx context.Context, id auth.Identity, caseID, officerID primitive.ObjectID) (*models.Case, error) {
	if _, err := s.loadWritable(ctx, id, caseID); err != nil {
		return nil, err
	}

	activity := activityEntry(id.ActorID, models.ActivityOther, "Officer removed from case",
		map[string]any{"officer_id": officerID.Hex()})
	if err := s.store.RemoveOfficer(ctx, caseID, officerID, activity, id.ActorID); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, apperr.ErrNotFound
		case errors.Is(err, casestore.ErrNotAssigned):
			return nil, fmt.Errorf("%w: officer not assigned", apperr.ErrNotFound)
		}
		return nil, err
	}

	updated, err := s.store.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, notify.Event{
		Type:      notify.EventOfficerRemoved,
		Case:      updated,
		ActorID:   id.ActorID,
		OfficerID: officerID,
	})
	return redactComments(updated, id), nil
}

// AttachImage records an uploaded image on the case with its ledger
// entry. Storage upload happens in the feature layer before this.
func (s *Service) AttachImage(ctx context.Context, id auth.Identity, caseID primitive.ObjectID, img models.CaseImage) (*models.Case, error) {
	if _, err := s.loadWritable(ctx, id, caseID); err != nil {
		return nil, err
	}

	activity := activityEntry(id.ActorID, models.ActivityImageUploaded, "Image uploaded",
		map[string]any{"filename": img.Filename})
	if err := s.store.AddImage(ctx, caseID, img, activity, id.ActorID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	updated, err := s.store.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return redactComments(updated, id), nil
}

// Statistics summarizes the cases visible to the actor.
func (s *Service) Statistics(ctx context.Context, id auth.Identity) (*casestore.Stats, error) {
	return s.store.Statistics(ctx, casepolicy.VisibilityFilter(id.ActorID, id.Role))
}
