package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// UserRole represents console roles
type UserRole string

const (
	UserRoleSuperAdmin  UserRole = "super_admin"
	UserRoleAdmin       UserRole = "admin"
	UserRoleCoordinator UserRole = "coordinator"
	UserRoleObserver    UserRole = "observer"
)

// IsAdmin reports whether the role may act on other users' verifications
func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin || r == UserRoleSuperAdmin
}

// UserProfile is the console profile of an observer or staff member.
// Only the Verification* fields are written by the verification service.
type UserProfile struct {
	ID                     uuid.UUID    `json:"id"`
	Name                   string       `json:"name"`
	Email                  string       `json:"email"`
	Phone                  string       `json:"phone,omitempty"`
	Role                   UserRole     `json:"role"`
	VerificationStatus     null.String  `json:"verificationStatus"`
	VerificationDate       null.Time    `json:"verificationDate"`
	VerificationConfidence null.Float64 `json:"verificationConfidence"`
	CreatedAt              time.Time    `json:"createdAt"`
	UpdatedAt              time.Time    `json:"updatedAt"`
}

// HasIdentity reports whether name and email are both filled in
func (p *UserProfile) HasIdentity() bool {
	return strings.TrimSpace(p.Name) != "" && strings.TrimSpace(p.Email) != ""
}

// SplitName splits the display name on its first space.
func (p *UserProfile) SplitName() (first, last string) {
	name := strings.TrimSpace(p.Name)
	if i := strings.Index(name, " "); i >= 0 {
		return name[:i], strings.TrimSpace(name[i+1:])
	}
	return name, ""
}

// ProfileVerificationUpdate is the denormalized verification snapshot written onto a profile.
// Date and Confidence are only set for verified outcomes. UpdatedAt stamps the row.
type ProfileVerificationUpdate struct {
	Status     VerificationStatus
	Date       null.Time
	Confidence null.Float64
	UpdatedAt  time.Time
}

// ProfileUpdateFor returns the profile snapshot a status should propagate, or false for pending.
func ProfileUpdateFor(status VerificationStatus, at time.Time, confidence null.Float64) (ProfileVerificationUpdate, bool) {
	switch status {
	case VerificationStatusVerified:
		return ProfileVerificationUpdate{
			Status:     status,
			Date:       null.TimeFrom(at),
			Confidence: confidence,
			UpdatedAt:  at,
		}, true
	case VerificationStatusFailed, VerificationStatusExpired, VerificationStatusCancelled:
		return ProfileVerificationUpdate{Status: status, UpdatedAt: at}, true
	default:
		return ProfileVerificationUpdate{}, false
	}
}
