// Package casepolicy decides who can see and change a case.
//
// Decisions are pure functions over a case snapshot and the caller's
// identity; no I/O happens here. The same rules exist in two forms:
// CanRead/CanWrite for a loaded document, and VisibilityFilter as a
// query predicate so list, search and statistics totals never count
// cases the caller cannot Get.
package casepolicy

import (
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Relationship of an actor to a specific case.
type Relationship int

const (
	RelNone Relationship = iota
	RelPublicViewer
	RelStakeholder
	RelOfficer
	RelPrimaryOfficer
	RelCreator
)

// Capability granted by a relationship or role.
type Capability int

const (
	CapRead Capability = iota
	CapWrite
	CapClose
)

// relationshipCaps maps a relationship to the capabilities it grants.
// Write entries always include read, so write access implies read
// access by construction.
var relationshipCaps = map[Relationship][]Capability{
	RelPublicViewer:   {CapRead},
	RelStakeholder:    {CapRead},
	RelOfficer:        {CapRead},
	RelPrimaryOfficer: {CapRead, CapWrite},
	RelCreator:        {CapRead, CapWrite},
}

// roleCaps maps a role to capabilities held on every case,
// independent of relationship.
var roleCaps = map[string][]Capability{
	models.RoleLawEnforcement: {CapRead, CapWrite, CapClose},
	models.RoleAdministrator:  {CapRead, CapWrite, CapClose},
}

// RelationshipTo computes the strongest relationship the actor has to
// the case.
func RelationshipTo(c *models.Case, actorID primitive.ObjectID) Relationship {
	if c.CreatedByUser(actorID) {
		return RelCreator
	}
	if o, ok := c.OfficerFor(actorID); ok {
		if o.Role == models.OfficerPrimary {
			return RelPrimaryOfficer
		}
		return RelOfficer
	}
	if _, ok := c.StakeholderFor(actorID); ok {
		return RelStakeholder
	}
	if c.IsPublic {
		return RelPublicViewer
	}
	return RelNone
}

// Has reports whether the actor holds the capability on the case.
func Has(c *models.Case, actorID primitive.ObjectID, role string, want Capability) bool {
	for _, rc := range roleCaps[role] {
		if rc == want {
			return true
		}
	}
	for _, rc := range relationshipCaps[RelationshipTo(c, actorID)] {
		if rc == want {
			return true
		}
	}
	return false
}

// CanRead reports whether the actor may view the case.
func CanRead(c *models.Case, actorID primitive.ObjectID, role string) bool {
	return Has(c, actorID, role, CapRead)
}

// CanWrite reports whether the actor may modify the case.
func CanWrite(c *models.Case, actorID primitive.ObjectID, role string) bool {
	return Has(c, actorID, role, CapWrite)
}

// CanClose reports whether the role may close cases. Closure is a
// role capability, never a relationship one: creators cannot close
// their own case.
func CanClose(role string) bool {
	for _, rc := range roleCaps[role] {
		if rc == CapClose {
			return true
		}
	}
	return false
}

// CanSeeComment reports whether the actor may view a comment on a
// case they can already read. Private comments stay between officers,
// the creator, and privileged roles.
func CanSeeComment(c *models.Case, comment models.Comment, actorID primitive.ObjectID, role string) bool {
	if !comment.IsPrivate {
		return true
	}
	if comment.UserID == actorID {
		return true
	}
	if CanWrite(c, actorID, role) {
		return true
	}
	rel := RelationshipTo(c, actorID)
	return rel == RelOfficer || rel == RelPrimaryOfficer
}

// VisibilityFilter returns the query predicate matching exactly the
// cases CanRead accepts for this identity. An empty map means
// unrestricted (privileged roles).
func VisibilityFilter(actorID primitive.ObjectID, role string) bson.M {
	if _, privileged := roleCaps[role]; privileged {
		return bson.M{}
	}
	return bson.M{"$or": bson.A{
		bson.M{"is_public": true},
		bson.M{"created_by": actorID},
		bson.M{"stakeholders.user_id": actorID},
		bson.M{"assigned_officers.user_id": actorID},
	}}
}
