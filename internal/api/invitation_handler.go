package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taskraft/taskraft-api/internal/api/shared"
	"github.com/taskraft/taskraft-api/internal/service"
)

// InvitationHandler handles invitation HTTP requests.
type InvitationHandler struct {
	invitations *service.InvitationService
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(invitations *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// Issue handles POST /api/groups/{groupID}/invitations requests.
func (h *InvitationHandler) Issue(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	groupID, ok := parseUUIDParam(w, r, "groupID")
	if !ok {
		return
	}

	var req IssueInvitationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "A valid email address is required")
		return
	}

	invitation, err := h.invitations.Issue(r.Context(), identity.UserID, groupID, req.Email)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	// The token appears once in this response; afterwards only the invitee's
	// link carries it.
	shared.RespondWithJSON(w, r, http.StatusCreated, invitationToResponse(invitation, true))
}

// Preview handles GET /invitations/{token} requests. The route is public:
// invitees hit it from the email link before they have an account.
func (h *InvitationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invitation token required")
		return
	}

	preview, err := h.invitations.Preview(r.Context(), token)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, preview)
}

// Redeem handles POST /api/invitations/{token}/redeem requests.
func (h *InvitationHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	token := chi.URLParam(r, "token")
	if token == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invitation token required")
		return
	}

	membership, err := h.invitations.Redeem(r.Context(), &identity, token)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}
	if membership == nil {
		// A concurrent redemption consumed the token for another account;
		// this request succeeded without minting a membership.
		shared.RespondWithJSON(w, r, http.StatusOK, RedeemInvitationResponse{Accepted: true})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MemberResponse{
		UserID:      membership.UserID,
		DisplayName: identity.DisplayName,
		AvatarURL:   identity.AvatarURL,
		Role:        string(membership.Role),
		JoinedAt:    membership.CreatedAt,
	})
}
