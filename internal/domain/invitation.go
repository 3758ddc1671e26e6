package domain

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// invitationTokenBytes is the entropy of a freshly minted invitation token.
// 32 random bytes, base64url-encoded to 43 characters.
const invitationTokenBytes = 32

// Invitation gates joining a group by email match. Its lifecycle is a
// two-state machine, Pending -> Accepted, with Accepted terminal. There is
// no revoked or expired state; invitations are never deleted, forming an
// audit trail of who was asked into which group.
type Invitation struct {
	ID        uuid.UUID `json:"id"`
	GroupID   uuid.UUID `json:"group_id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"` // single-use secret, never serialized
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
}

// NewInvitation creates a pending Invitation for the given group and email,
// minting a cryptographically random token.
func NewInvitation(groupID uuid.UUID, email string) (*Invitation, error) {
	token, err := generateInvitationToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation token: %w", err)
	}

	inv := &Invitation{
		ID:        uuid.New(),
		GroupID:   groupID,
		Email:     email,
		Token:     token,
		Accepted:  false,
		CreatedAt: time.Now().UTC(),
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	return inv, nil
}

// Validate checks if the Invitation has valid data.
func (i *Invitation) Validate() error {
	if i.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if i.GroupID == uuid.Nil {
		return NewValidationError("group_id", "cannot be empty", ErrInvalidID)
	}
	if i.Email == "" {
		return NewValidationError("email", "cannot be empty", nil)
	}
	if !validateEmailFormat(i.Email) {
		return NewValidationError("email", "malformed address", ErrInvalidEmail)
	}
	if i.Token == "" {
		return NewValidationError("token", "cannot be empty", nil)
	}
	return nil
}

// IsPending reports whether the invitation can still be redeemed.
func (i *Invitation) IsPending() bool {
	return !i.Accepted
}

// MatchesEmail reports whether the redeeming user's email exactly equals
// the invited address. Matching is byte-exact; no normalization.
func (i *Invitation) MatchesEmail(email string) bool {
	return i.Email == email
}

func generateInvitationToken() (string, error) {
	b := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
