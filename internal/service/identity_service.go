package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskraft/taskraft-api/internal/domain"
	"github.com/taskraft/taskraft-api/internal/service/auth"
	"github.com/taskraft/taskraft-api/internal/store"
)

// loginStateLifetime bounds how long an OAuth round trip may take before
// the state parameter expires.
const loginStateLifetime = 10 * time.Minute

// TokenPair is the access/refresh token set issued after authentication.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResult carries everything the callback handler needs once the
// external identity resolves.
type LoginResult struct {
	User   *domain.User
	Tokens TokenPair

	// InviteToken is non-empty when the login began from an invitation
	// link; the caller should redeem it for the signed-in user.
	InviteToken string

	// ReturnURL is where the client asked to land after login.
	ReturnURL string
}

// IdentityService orchestrates the OAuth login flow: it issues anti-forgery
// states, exchanges authorization codes for verified profiles, upserts the
// resulting user and mints token pairs.
type IdentityService struct {
	users    store.UserStore
	states   store.LoginStateStore
	provider auth.IdentityProvider
	jwt      auth.JWTService
	logger   *slog.Logger
}

// NewIdentityService creates an IdentityService.
// It returns an error if any of the required dependencies are nil.
func NewIdentityService(
	users store.UserStore,
	states store.LoginStateStore,
	provider auth.IdentityProvider,
	jwtService auth.JWTService,
	log *slog.Logger,
) (*IdentityService, error) {
	if users == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if states == nil {
		return nil, errors.New("login state store cannot be nil")
	}
	if provider == nil {
		return nil, errors.New("identity provider cannot be nil")
	}
	if jwtService == nil {
		return nil, errors.New("jwt service cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &IdentityService{
		users:    users,
		states:   states,
		provider: provider,
		jwt:      jwtService,
		logger:   log.With(slog.String("component", "identity_service")),
	}, nil
}

// BeginLogin starts an OAuth round trip. The optional inviteToken binds the
// login to a pending invitation so the callback can redeem it; returnURL is
// where the client wants to land afterwards. Returns the provider's consent
// screen URL.
func (s *IdentityService) BeginLogin(
	ctx context.Context,
	inviteToken, returnURL string,
) (string, error) {
	state, err := newLoginState()
	if err != nil {
		return "", NewServiceError("begin_login", "failed to generate state", err)
	}

	err = s.states.Save(ctx, &store.LoginState{
		State:       state,
		InviteToken: inviteToken,
		ReturnURL:   returnURL,
		ExpiresAt:   time.Now().Add(loginStateLifetime),
	})
	if err != nil {
		return "", NewServiceError("begin_login", "failed to save login state", err)
	}

	s.logger.DebugContext(ctx, "login started",
		slog.Bool("has_invite", inviteToken != ""))
	return s.provider.AuthURL(state), nil
}

// CompleteLogin finishes the OAuth round trip: it consumes the state,
// exchanges the authorization code, upserts the user record from the
// provider's profile and issues a token pair.
//
// Returns ErrInvalidLoginState when the state is unknown or expired.
func (s *IdentityService) CompleteLogin(
	ctx context.Context,
	state, code string,
) (*LoginResult, error) {
	pending, err := s.states.Consume(ctx, state)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidLoginState
		}
		return nil, NewServiceError("complete_login", "failed to consume login state", err)
	}

	profile, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.WarnContext(ctx, "identity exchange failed",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrCollaborator, err)
	}

	user, err := auth.NewUserFromProfile(profile)
	if err != nil {
		return nil, NewServiceError("complete_login", "provider profile failed validation", err)
	}

	saved, err := s.users.UpsertByExternalID(ctx, user)
	if err != nil {
		return nil, NewServiceError("complete_login", "failed to upsert user", err)
	}

	tokens, err := s.issueTokens(ctx, saved.ID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "login completed",
		slog.String("user_id", saved.ID.String()),
		slog.Bool("has_invite", pending.InviteToken != ""))

	return &LoginResult{
		User:        saved,
		Tokens:      *tokens,
		InviteToken: pending.InviteToken,
		ReturnURL:   pending.ReturnURL,
	}, nil
}

// RefreshTokens validates the refresh token and issues a fresh token pair.
// The user must still exist; a deleted account cannot refresh.
func (s *IdentityService) RefreshTokens(
	ctx context.Context,
	refreshToken string,
) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, NewServiceError("refresh_tokens", "failed to load user", err)
	}

	return s.issueTokens(ctx, claims.UserID)
}

// CurrentUser loads the user record for an authenticated identity.
func (s *IdentityService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("current_user", "failed to load user", err)
	}
	return user, nil
}

func (s *IdentityService) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	access, err := s.jwt.GenerateToken(ctx, userID)
	if err != nil {
		return nil, NewServiceError("issue_tokens", "failed to generate access token", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return nil, NewServiceError("issue_tokens", "failed to generate refresh token", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// newLoginState mints an unguessable OAuth state parameter.
func newLoginState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
