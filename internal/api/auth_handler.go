package api

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/taskraft/taskraft-api/internal/api/shared"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/platform/logger"
	"github.com/taskraft/taskraft-api/internal/service"
)

// AuthHandler handles the OAuth login flow and token lifecycle.
type AuthHandler struct {
	identities  *service.IdentityService
	invitations *service.InvitationService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	identities *service.IdentityService,
	invitations *service.InvitationService,
	log *slog.Logger,
) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		identities:  identities,
		invitations: invitations,
		logger:      log.With(slog.String("component", "auth_handler")),
	}
}

// Login handles GET /auth/google requests. The optional invite_token query
// parameter binds the login to a pending invitation; return_url says where
// the client wants to land afterwards.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	inviteToken := r.URL.Query().Get("invite_token")
	returnURL := r.URL.Query().Get("return_url")

	authURL, err := h.identities.BeginLogin(r.Context(), inviteToken, returnURL)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	http.Redirect(w, r, authURL, http.StatusSeeOther)
}

// Callback handles GET /auth/google/callback requests. It completes the
// identity exchange, redeems a bound invitation if the login carried one,
// and hands the token pair back: as a fragment on the return URL when one
// was requested, as JSON otherwise.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing state or code")
		return
	}

	result, err := h.identities.CompleteLogin(r.Context(), state, code)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if result.InviteToken != "" {
		identity := domain.IdentityFromUser(result.User)
		if _, err := h.invitations.Redeem(r.Context(), &identity, result.InviteToken); err != nil {
			// The login itself succeeded; a dead invitation should not
			// block it.
			log.Warn("invitation bound to login could not be redeemed",
				slog.String("error", err.Error()),
				slog.String("user_id", result.User.ID.String()))
		}
	}

	if result.ReturnURL != "" {
		fragment := url.Values{}
		fragment.Set("access_token", result.Tokens.AccessToken)
		fragment.Set("refresh_token", result.Tokens.RefreshToken)
		http.Redirect(w, r, result.ReturnURL+"#"+fragment.Encode(), http.StatusSeeOther)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		UserID:       result.User.ID,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

// Refresh handles POST /auth/refresh requests.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Refresh token is required")
		return
	}

	tokens, err := h.identities.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tokens)
}

// Me handles GET /api/me requests for the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	user, err := h.identities.CurrentUser(r.Context(), identity.UserID)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UserResponse{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		AvatarURL:   user.AvatarURL,
		CreatedAt:   user.CreatedAt,
	})
}
