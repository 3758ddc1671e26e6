package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level a membership carries within a group.
type Role string

const (
	// RoleOwner authorizes invite issuance, member removal and group deletion.
	RoleOwner Role = "owner"

	// RoleMember is the default role granted by invitation redemption.
	RoleMember Role = "member"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	return r == RoleOwner || r == RoleMember
}

// Membership joins a user to a group with a role. At most one membership
// exists per (user, group) pair; the first membership of a newly created
// group always has role owner.
type Membership struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	GroupID   uuid.UUID `json:"group_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMembership creates a new Membership joining the user to the group.
func NewMembership(userID, groupID uuid.UUID, role Role) (*Membership, error) {
	m := &Membership{
		ID:        uuid.New(),
		UserID:    userID,
		GroupID:   groupID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks if the Membership has valid data.
func (m *Membership) Validate() error {
	if m.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if m.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if m.GroupID == uuid.Nil {
		return NewValidationError("group_id", "cannot be empty", ErrInvalidID)
	}
	if !m.Role.IsValid() {
		return NewValidationError("role", "must be owner or member", ErrInvalidRole)
	}
	return nil
}

// IsOwner reports whether the membership carries the owner role.
func (m *Membership) IsOwner() bool {
	return m.Role == RoleOwner
}

// Member is a membership joined with its user's display projection,
// as returned by member listings.
type Member struct {
	Membership
	User MemberProjection `json:"user"`
}
