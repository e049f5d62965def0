// internal/app/features/cases/types.go
package cases

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	casestore "github.com/findxvision/casewatch/internal/app/store/cases"
	"github.com/findxvision/casewatch/internal/app/system/apperr"
	"github.com/findxvision/casewatch/internal/app/system/paging"
	"github.com/findxvision/casewatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createRequest struct {
	MissingPerson     models.MissingPerson `json:"missing_person"`
	LastSeenLocation  models.Location      `json:"last_seen_location"`
	LastSeenDate      *time.Time           `json:"last_seen_date,omitempty"`
	Circumstances     string               `json:"circumstances"`
	Priority          string               `json:"priority"`
	ReportedBy        models.Contact       `json:"reported_by"`
	EmergencyContacts []models.Contact     `json:"emergency_contacts"`
	Tags              []string             `json:"tags"`
	IsPublic          bool                 `json:"is_public"`
	PublicDescription string               `json:"public_description"`
}

type updateRequest struct {
	Status            *string               `json:"status,omitempty"`
	Priority          *string               `json:"priority,omitempty"`
	MissingPerson     *models.MissingPerson `json:"missing_person,omitempty"`
	LastSeenLocation  *models.Location      `json:"last_seen_location,omitempty"`
	LastSeenDate      *time.Time            `json:"last_seen_date,omitempty"`
	Circumstances     *string               `json:"circumstances,omitempty"`
	Tags              *[]string             `json:"tags,omitempty"`
	IsPublic          *bool                 `json:"is_public,omitempty"`
	PublicDescription *string               `json:"public_description,omitempty"`
}

type closeRequest struct {
	Reason string `json:"reason"`
}

type commentRequest struct {
	Content   string `json:"content"`
	IsPrivate bool   `json:"is_private"`
}

type assignRequest struct {
	OfficerID string `json:"officer_id"`
	Role      string `json:"role"`
}

type listResponse struct {
	Cases      []models.Case `json:"cases"`
	Pagination paging.Meta   `json:"pagination"`
}

// caseIDParam parses the {caseID} route parameter.
func caseIDParam(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "caseID"))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid case id", apperr.ErrValidation)
	}
	return id, nil
}

// parseFilter reads list/search criteria from the query string.
func parseFilter(r *http.Request) (casestore.Filter, paging.Params) {
	p := paging.Parse(r)
	f := casestore.Filter{
		Status:   query.Get(r, "status"),
		Priority: query.Get(r, "priority"),
		Text:     query.Get(r, "q"),
		Skip:     p.Skip(),
		Limit:    p.Limit,
	}
	if tags := query.Get(r, "tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}
	if v := query.Get(r, "from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			f.From = &t
		}
	}
	if v := query.Get(r, "to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			end := t.Add(24*time.Hour - time.Second)
			f.To = &end
		}
	}
	lat, latErr := strconv.ParseFloat(query.Get(r, "lat"), 64)
	lng, lngErr := strconv.ParseFloat(query.Get(r, "lng"), 64)
	if latErr == nil && lngErr == nil {
		near := &casestore.GeoNear{Latitude: lat, Longitude: lng, MaxMeters: 10000}
		if radius, err := strconv.ParseFloat(query.Get(r, "radius"), 64); err == nil && radius > 0 {
			near.MaxMeters = radius
		}
		f.Near = near
	}
	return f, p
}
