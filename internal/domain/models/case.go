// internal/domain/models/case.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Case statuses. Close is the only deletion path; documents are never
// removed from the collection.
const (
	CaseStatusOpen          = "OPEN"
	CaseStatusInvestigating = "INVESTIGATING"
	CaseStatusResolved      = "RESOLVED"
	CaseStatusClosed        = "CLOSED"
)

// Case priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Stakeholder roles.
const (
	StakeholderFamily         = "FAMILY"
	StakeholderFriend         = "FRIEND"
	StakeholderLawEnforcement = "LAW_ENFORCEMENT"
	StakeholderVolunteer      = "VOLUNTEER"
	StakeholderOther          = "OTHER"
)

// Officer roles. A case has at most one entry per officer regardless
// of role.
const (
	OfficerPrimary    = "PRIMARY"
	OfficerSecondary  = "SECONDARY"
	OfficerConsultant = "CONSULTANT"
)

// Activity types recorded on the per-case ledger.
const (
	ActivityStatusChange     = "STATUS_CHANGE"
	ActivityNoteAdded        = "NOTE_ADDED"
	ActivityImageUploaded    = "IMAGE_UPLOADED"
	ActivityContactAdded     = "CONTACT_ADDED"
	ActivityLocationUpdate   = "LOCATION_UPDATE"
	ActivitySightingReported = "SIGHTING_REPORTED"
	ActivityOther            = "OTHER"
)

// PhysicalDescription is free-form identifying detail for the missing
// person.
type PhysicalDescription struct {
	Height              string `bson:"height,omitempty" json:"height,omitempty"`
	Weight              string `bson:"weight,omitempty" json:"weight,omitempty"`
	EyeColor            string `bson:"eye_color,omitempty" json:"eye_color,omitempty"`
	HairColor           string `bson:"hair_color,omitempty" json:"hair_color,omitempty"`
	Complexion          string `bson:"complexion,omitempty" json:"complexion,omitempty"`
	DistinguishingMarks string `bson:"distinguishing_marks,omitempty" json:"distinguishing_marks,omitempty"`
	Clothing            string `bson:"clothing,omitempty" json:"clothing,omitempty"`
}

// MissingPerson is the subject of a case.
type MissingPerson struct {
	FirstName           string               `bson:"first_name" json:"first_name"`
	LastName            string               `bson:"last_name" json:"last_name"`
	Age                 int                  `bson:"age,omitempty" json:"age,omitempty"`
	Gender              string               `bson:"gender,omitempty" json:"gender,omitempty"`
	DateOfBirth         *time.Time           `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	PhysicalDescription *PhysicalDescription `bson:"physical_description,omitempty" json:"physical_description,omitempty"`
	MedicalConditions   []string             `bson:"medical_conditions,omitempty" json:"medical_conditions,omitempty"`
}

// Coordinates is a plain lat/lng pair as reported.
type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// GeoPoint mirrors Coordinates in GeoJSON order for the 2dsphere
// index ([lng, lat]).
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"` // always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds the GeoJSON mirror of a lat/lng pair.
func NewGeoPoint(c Coordinates) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: []float64{c.Longitude, c.Latitude}}
}

// Location is where the person was last seen.
type Location struct {
	Address             string       `bson:"address,omitempty" json:"address,omitempty"`
	City                string       `bson:"city,omitempty" json:"city,omitempty"`
	State               string       `bson:"state,omitempty" json:"state,omitempty"`
	Country             string       `bson:"country,omitempty" json:"country,omitempty"`
	Coordinates         *Coordinates `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	LocationDescription string       `bson:"location_description,omitempty" json:"location_description,omitempty"`
}

// CaseImage is a stored photo reference.
type CaseImage struct {
	URL            string             `bson:"url" json:"url"`
	ObjectKey      string             `bson:"object_key" json:"-"`
	Filename       string             `bson:"filename" json:"filename"`
	UploadedAt     time.Time          `bson:"uploaded_at" json:"uploaded_at"`
	UploadedBy     primitive.ObjectID `bson:"uploaded_by" json:"uploaded_by"`
	IsProfileImage bool               `bson:"is_profile_image" json:"is_profile_image"`
}

// Contact is a reporter or emergency contact.
type Contact struct {
	Name         string `bson:"name" json:"name"`
	Relationship string `bson:"relationship,omitempty" json:"relationship,omitempty"`
	PhoneNumber  string `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	Email        string `bson:"email,omitempty" json:"email,omitempty"`
}

// StakeholderNotify holds a stakeholder's per-case channel opt-ins.
type StakeholderNotify struct {
	Email    bool `bson:"email" json:"email"`
	WhatsApp bool `bson:"whatsapp" json:"whatsapp"`
	InApp    bool `bson:"in_app" json:"in_app"`
}

// Stakeholder links a user to a case they follow.
type Stakeholder struct {
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role    string             `bson:"role" json:"role"` // FAMILY | FRIEND | LAW_ENFORCEMENT | VOLUNTEER | OTHER
	Notify  StakeholderNotify  `bson:"notify" json:"notify"`
	AddedAt time.Time          `bson:"added_at" json:"added_at"`
}

// Officer is an investigating officer assigned to a case.
type Officer struct {
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role       string             `bson:"role" json:"role"` // PRIMARY | SECONDARY | CONSULTANT
	AssignedAt time.Time          `bson:"assigned_at" json:"assigned_at"`
}

// Activity is one entry on the per-case ledger. Entries are appended
// in the same update as the mutation they record and never edited.
// Metadata carries field names only, never values.
type Activity struct {
	Type        string              `bson:"type" json:"type"`
	Description string              `bson:"description" json:"description"`
	UserID      *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Timestamp   time.Time           `bson:"timestamp" json:"timestamp"`
	Metadata    map[string]any      `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// Comment is a discussion entry on a case. Private comments are
// visible only to officers, the creator, and administrators, and
// never trigger notifications.
type Comment struct {
	ID        primitive.ObjectID `bson:"id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Content   string             `bson:"content" json:"content"`
	IsPrivate bool               `bson:"is_private" json:"is_private"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Case is a missing-person case record. All embedded lists live on
// the document so every mutation plus its activity land in a single
// atomic update.
type Case struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CaseNumber string             `bson:"case_number" json:"case_number"`
	Status     string             `bson:"status" json:"status"`
	Priority   string             `bson:"priority" json:"priority"`

	MissingPerson    MissingPerson `bson:"missing_person" json:"missing_person"`
	LastSeenLocation Location      `bson:"last_seen_location" json:"last_seen_location"`
	Geo              *GeoPoint     `bson:"geo,omitempty" json:"-"`
	LastSeenDate     *time.Time    `bson:"last_seen_date,omitempty" json:"last_seen_date,omitempty"`
	Circumstances    string        `bson:"circumstances,omitempty" json:"circumstances,omitempty"`

	Images            []CaseImage   `bson:"images" json:"images"`
	ReportedBy        Contact       `bson:"reported_by" json:"reported_by"`
	EmergencyContacts []Contact     `bson:"emergency_contacts,omitempty" json:"emergency_contacts,omitempty"`
	Stakeholders      []Stakeholder `bson:"stakeholders" json:"stakeholders"`
	AssignedOfficers  []Officer     `bson:"assigned_officers" json:"assigned_officers"`
	Activities        []Activity    `bson:"activities" json:"activities"`
	Comments          []Comment     `bson:"comments" json:"comments"`
	Tags              []string      `bson:"tags,omitempty" json:"tags,omitempty"`

	IsPublic          bool   `bson:"is_public" json:"is_public"`
	PublicDescription string `bson:"public_description,omitempty" json:"public_description,omitempty"`

	CreatedBy     *primitive.ObjectID `bson:"created_by,omitempty" json:"created_by,omitempty"`
	LastUpdatedBy *primitive.ObjectID `bson:"last_updated_by,omitempty" json:"last_updated_by,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// OfficerFor returns the assignment entry for a user, if any.
func (c *Case) OfficerFor(userID primitive.ObjectID) (Officer, bool) {
	for _, o := range c.AssignedOfficers {
		if o.UserID == userID {
			return o, true
		}
	}
	return Officer{}, false
}

// StakeholderFor returns the stakeholder entry for a user, if any.
func (c *Case) StakeholderFor(userID primitive.ObjectID) (Stakeholder, bool) {
	for _, s := range c.Stakeholders {
		if s.UserID == userID {
			return s, true
		}
	}
	return Stakeholder{}, false
}

// CreatedByUser reports whether userID created the case.
func (c *Case) CreatedByUser(userID primitive.ObjectID) bool {
	return c.CreatedBy != nil && *c.CreatedBy == userID
}
