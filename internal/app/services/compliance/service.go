// internal/app/services/compliance/service.go
package compliance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/findxvision/casewatch/internal/app/store/audit"
	casestore "github.com/findxvision/casewatch/internal/app/store/cases"
	notifstore "github.com/findxvision/casewatch/internal/app/store/notifications"
	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	"github.com/findxvision/casewatch/internal/app/system/apperr"
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaultRetention is the audit retention horizon: seven years.
const DefaultRetention = 7 * 365 * 24 * time.Hour

// Service implements subject-access export and the right to erasure.
type Service struct {
	users     *userstore.Store
	cases     *casestore.Store
	notifs    *notifstore.Store
	audit     *audit.Store
	retention time.Duration
	log       *zap.Logger
}

// New creates the compliance service.
func New(users *userstore.Store, cases *casestore.Store, notifs *notifstore.Store, auditStore *audit.Store, retention time.Duration, log *zap.Logger) *Service {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Service{
		users:     users,
		cases:     cases,
		notifs:    notifs,
		audit:     auditStore,
		retention: retention,
		log:       log,
	}
}

// CaseRole summarizes one case the subject participates in.
type CaseRole struct {
	CaseID     primitive.ObjectID `json:"case_id"`
	CaseNumber string             `json:"case_number"`
	Status     string             `json:"status"`
	Roles      []string           `json:"roles"`
}

// ExportBundle is the complete per-subject data export.
type ExportBundle struct {
	ExportID      string                `json:"export_id"`
	GeneratedAt   time.Time             `json:"generated_at"`
	Profile       *models.User          `json:"profile"`
	CaseRoles     []CaseRole            `json:"case_roles"`
	Notifications []models.Notification `json:"notifications"`
	AuditTrail    []models.AuditLog     `json:"audit_trail"`
}

// Export assembles everything held about the subject: profile, case
// participation, notification history and audit trail.
func (s *Service) Export(ctx context.Context, subjectID primitive.ObjectID) (*ExportBundle, error) {
	u, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	u.PasswordHash = ""

	participating, err := s.cases.FindByParticipant(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("export cases: %w", err)
	}
	roles := make([]CaseRole, 0, len(participating))
	for _, c := range participating {
		cr := CaseRole{CaseID: c.ID, CaseNumber: c.CaseNumber, Status: c.Status}
		if c.CreatedByUser(subjectID) {
			cr.Roles = append(cr.Roles, "creator")
		}
		if _, ok := c.StakeholderFor(subjectID); ok {
			cr.Roles = append(cr.Roles, "stakeholder")
		}
		if _, ok := c.OfficerFor(subjectID); ok {
			cr.Roles = append(cr.Roles, "officer")
		}
		roles = append(roles, cr)
	}

	notifs, err := s.notifs.ListByUserAll(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("export notifications: %w", err)
	}
	trail, err := s.audit.ListByUser(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("export audit trail: %w", err)
	}

	return &ExportBundle{
		ExportID:      uuid.NewString(),
		GeneratedAt:   time.Now(),
		Profile:       u,
		CaseRoles:     roles,
		Notifications: notifs,
		AuditTrail:    trail,
	}, nil
}

// EraseResult reports what erasure touched.
type EraseResult struct {
	CasesAnonymized      int64 `json:"cases_anonymized"`
	CasesDetached        int64 `json:"cases_detached"`
	NotificationsDeleted int64 `json:"notifications_deleted"`
	AuditDeleted         int64 `json:"audit_deleted"`
	AuditDetached        int64 `json:"audit_detached"`
}

// Erase removes the subject while preserving the investigative
// record: case facts, activities and comments stay; authorship and
// participation are unlinked; notifications and the user document go.
// Audit rows older than the retention horizon are deleted, newer ones
// keep the event but lose the user reference.
func (s *Service) Erase(ctx context.Context, subjectID primitive.ObjectID) (*EraseResult, error) {
	if _, err := s.users.GetByID(ctx, subjectID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	res := &EraseResult{}
	var err error

	if res.CasesAnonymized, err = s.cases.AnonymizeCreator(ctx, subjectID); err != nil {
		return nil, fmt.Errorf("anonymize cases: %w", err)
	}
	if res.CasesDetached, err = s.cases.PullParticipant(ctx, subjectID); err != nil {
		return nil, fmt.Errorf("detach case participation: %w", err)
	}
	if res.NotificationsDeleted, err = s.notifs.DeleteByUser(ctx, subjectID); err != nil {
		return nil, fmt.Errorf("delete notifications: %w", err)
	}

	cutoff := time.Now().Add(-s.retention)
	if res.AuditDeleted, err = s.audit.DeleteUserOlderThan(ctx, subjectID, cutoff); err != nil {
		return nil, fmt.Errorf("purge audit rows: %w", err)
	}
	if res.AuditDetached, err = s.audit.DetachUser(ctx, subjectID); err != nil {
		return nil, fmt.Errorf("detach audit rows: %w", err)
	}

	if err := s.users.Delete(ctx, subjectID); err != nil {
		return nil, fmt.Errorf("delete user: %w", err)
	}

	s.log.Info("subject erased",
		zap.String("subject_id", subjectID.Hex()),
		zap.Int64("cases_anonymized", res.CasesAnonymized),
		zap.Int64("notifications_deleted", res.NotificationsDeleted))
	return res, nil
}

// Rectify corrects the subject's own profile fields.
func (s *Service) Rectify(ctx context.Context, subjectID primitive.ObjectID, firstName, lastName, phone string) error {
	if firstName == "" && lastName == "" && phone == "" {
		return fmt.Errorf("%w: nothing to rectify", apperr.ErrValidation)
	}
	if err := s.users.Rectify(ctx, subjectID, firstName, lastName, phone); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.ErrNotFound
		}
		return err
	}
	return nil
}
