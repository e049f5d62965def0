// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	"github.com/findxvision/casewatch/internal/app/system/paging"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// listItem is one audit row with the actor resolved to a name where
// the user still exists. Erased subjects stay anonymous.
type listItem struct {
	ID         string              `json:"id"`
	UserID     *primitive.ObjectID `json:"user_id,omitempty"`
	UserName   string              `json:"user_name,omitempty"`
	Action     string              `json:"action"`
	Resource   string              `json:"resource"`
	ResourceID string              `json:"resource_id,omitempty"`
	Details    models.AuditDetails `json:"details,omitempty"`
	Timestamp  time.Time           `json:"timestamp"`
	Success    bool                `json:"success"`
	Error      string              `json:"error,omitempty"`
}

type listResponse struct {
	Entries    []listItem  `json:"entries"`
	Pagination paging.Meta `json:"pagination"`
}

// ServeList handles GET /audit. Administrators filter by action,
// resource, user and date range.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	p := paging.Parse(r)
	filter := audit.QueryFilter{
		Action:   strings.TrimSpace(r.URL.Query().Get("action")),
		Resource: strings.TrimSpace(r.URL.Query().Get("resource")),
		Limit:    p.Limit,
		Offset:   p.Skip(),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		filter.UserID = &id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.StartTime = &t
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Second)
			filter.EndTime = &endOfDay
		}
	}

	entries, err := h.Store.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit entries", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "internal error")
		return
	}
	total, err := h.Store.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit entries", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Batch-resolve user names for display.
	idSet := make(map[primitive.ObjectID]struct{})
	for _, e := range entries {
		if e.UserID != nil {
			idSet[*e.UserID] = struct{}{}
		}
	}
	names := make(map[primitive.ObjectID]string)
	if len(idSet) > 0 {
		ids := make([]primitive.ObjectID, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		users, err := h.Users.GetMany(ctx, ids)
		if err != nil {
			h.Log.Warn("failed to resolve user names for audit list", zap.Error(err))
		} else {
			for _, u := range users {
				names[u.ID] = strings.TrimSpace(u.FirstName + " " + u.LastName)
			}
		}
	}

	items := make([]listItem, 0, len(entries))
	for _, e := range entries {
		item := listItem{
			ID:         e.ID.Hex(),
			UserID:     e.UserID,
			Action:     e.Action,
			Resource:   e.Resource,
			ResourceID: e.ResourceID,
			Details:    e.Details,
			Timestamp:  e.Timestamp,
			Success:    e.Success,
			Error:      e.ErrorMessage,
		}
		if e.UserID != nil {
			item.UserName = names[*e.UserID]
		}
		items = append(items, item)
	}

	respond.OK(w, listResponse{Entries: items, Pagination: paging.NewMeta(p, total)})
}
