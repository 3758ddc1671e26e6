package domain

import "github.com/google/uuid"

// Identity is the fixed value type carrying the authenticated actor through
// every core operation. It is constructed exactly once, when the external
// identity exchange resolves, and passed as an explicit argument; the core
// never performs an ambient session lookup.
type Identity struct {
	UserID      uuid.UUID
	ExternalID  string
	DisplayName string
	Email       string
	AvatarURL   string
}

// IdentityFromUser builds an Identity from a resolved user record.
func IdentityFromUser(u *User) Identity {
	return Identity{
		UserID:      u.ID,
		ExternalID:  u.ExternalID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
	}
}
