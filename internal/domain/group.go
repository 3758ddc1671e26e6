package domain

import (
	"time"

	"github.com/google/uuid"
)

// Group is the unit of tenancy. A group owns its memberships and tasks in
// the deletion sense: removing a group cascades over its dependent rows in
// a single transaction. No entity holds a live back-reference collection;
// relationships are always looked up by foreign key.
type Group struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewGroup creates a new Group with the given name.
func NewGroup(name string) (*Group, error) {
	group := &Group{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := group.Validate(); err != nil {
		return nil, err
	}

	return group, nil
}

// Validate checks if the Group has valid data.
func (g *Group) Validate() error {
	if g.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if g.Name == "" {
		return NewValidationError("name", "cannot be empty", ErrEmptyContent)
	}
	return nil
}
