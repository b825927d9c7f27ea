package services

import (
	"fmt"
	"strings"

	"github.com/mustyusuf/publish-manuscript-portal-sub000/models"

	"gorm.io/gorm"
)

// MaskedEmail is the fixed redaction literal returned to viewers who
// may not see a profile's real address.
const MaskedEmail = "***@***.***"

// DisplayProfile is the viewer-facing projection of a user profile.
// Email is masked according to the capability matrix and degraded reads
// get a deterministic placeholder instead of failing the aggregate.
type DisplayProfile struct {
	UserID    int    `json:"user_id,omitempty"`
	UserUUID  string `json:"user_uuid,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Degraded  bool   `json:"degraded,omitempty"`
}

// MaskEmail returns the literal email when the viewer is an admin or is
// looking at their own profile, and the redaction literal otherwise.
func MaskEmail(viewerRole models.Role, viewerID, targetID int, email string) string {
	if viewerRole.IsAdmin() || viewerID == targetID {
		return email
	}
	return MaskedEmail
}

// uuidPrefix returns the short identifier used in degraded placeholders:
// the first 8 characters of the uuid, or the whole value when shorter.
func uuidPrefix(uuid string) string {
	if len(uuid) > 8 {
		return uuid[:8]
	}
	return uuid
}

// FallbackProfile builds the placeholder shown when a profile row could
// not be read (restrictive policy or missing row). kind is the display
// noun, "Author" or "Reviewer".
func FallbackProfile(kind, uuid string) DisplayProfile {
	return DisplayProfile{
		UserUUID:  uuid,
		FirstName: kind,
		LastName:  fmt.Sprintf("(%s)", uuidPrefix(uuid)),
		Email:     MaskedEmail,
		Degraded:  true,
	}
}

// DisplayUser projects target for viewer, applying the email mask. A
// nil target yields the degraded placeholder keyed by uuid.
func DisplayUser(viewerRole models.Role, viewerID int, target *models.User, kind, uuid string) DisplayProfile {
	if target == nil || target.UserID == 0 {
		return FallbackProfile(kind, uuid)
	}
	return DisplayProfile{
		UserID:    target.UserID,
		UserUUID:  target.UserUUID,
		FirstName: target.FirstName,
		LastName:  target.LastName,
		Email:     MaskEmail(viewerRole, viewerID, target.UserID, target.Email),
	}
}

// CanEditRole reports whether actor may change target's role. Only
// admins edit roles, and a plain admin may not touch a super_admin.
func CanEditRole(actorRole, targetRole models.Role) bool {
	if !actorRole.IsAdmin() {
		return false
	}
	if targetRole == models.RoleSuperAdmin && actorRole != models.RoleSuperAdmin {
		return false
	}
	return true
}

// IsPolicyDenied distinguishes an authorization denial from a generic
// store failure so callers can degrade instead of aborting. MySQL
// reports grant problems as "command denied" / "access denied"; a
// missing row behaves the same way for a restricted reader.
func IsPolicyDenied(err error) bool {
	if err == nil {
		return false
	}
	if err == gorm.ErrRecordNotFound {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "denied")
}
