package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered user of the application.
// Users are created on first successful identity resolution and are
// never deleted by the core: group membership is the unit of tenancy,
// not the user record itself.
type User struct {
	ID          uuid.UUID `json:"id"`
	ExternalID  string    `json:"-"` // subject claim from the identity provider
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewUser creates a new User from a resolved external identity.
// It generates a new UUID for the user ID and sets the creation timestamp.
// Returns an error if validation fails.
func NewUser(externalID, displayName, email, avatarURL string) (*User, error) {
	user := &User{
		ID:          uuid.New(),
		ExternalID:  externalID,
		DisplayName: displayName,
		Email:       email,
		AvatarURL:   avatarURL,
		CreatedAt:   time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if u.ExternalID == "" {
		return NewValidationError("external_id", "cannot be empty", nil)
	}
	if u.Email == "" {
		return NewValidationError("email", "cannot be empty", nil)
	}
	if !validateEmailFormat(u.Email) {
		return NewValidationError("email", "malformed address", ErrInvalidEmail)
	}
	return nil
}

// validateEmailFormat performs basic validation of email format.
// Returns true if the email appears to be in a valid format.
func validateEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domainPart := email[at+1:]
	dot := strings.Index(domainPart, ".")
	return dot > 0 && dot < len(domainPart)-1
}

// MemberProjection is the display shape of a user inside a group:
// just enough for member lists and assignee/author resolution.
type MemberProjection struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
}

// Project returns the display projection of the user.
func (u *User) Project() MemberProjection {
	return MemberProjection{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}
