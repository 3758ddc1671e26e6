package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/taskraft/taskraft-api/internal/config"
	"github.com/taskraft/taskraft-api/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// ExternalProfile is the identity a provider vouches for after a successful
// authorization-code exchange.
type ExternalProfile struct {
	// ExternalID is the provider's stable subject identifier for the user.
	ExternalID string

	DisplayName string
	Email       string
	AvatarURL   string
}

// IdentityProvider exchanges an OAuth authorization code for a verified
// external profile.
type IdentityProvider interface {
	// AuthURL builds the provider's consent-screen URL bound to the given
	// anti-forgery state.
	AuthURL(state string) string

	// ExchangeCode redeems the authorization code and fetches the user's
	// profile. Returns ErrIdentityExchange when the provider rejects the
	// code or the profile cannot be fetched.
	ExchangeCode(ctx context.Context, code string) (*ExternalProfile, error)
}

// GoogleIdentityProvider implements IdentityProvider against Google's OAuth2
// endpoints.
type GoogleIdentityProvider struct {
	oauthConfig *oauth2.Config

	// userInfoURL is overridable for testing against a local server.
	userInfoURL string
}

var _ IdentityProvider = (*GoogleIdentityProvider)(nil)

// NewGoogleIdentityProvider creates an identity provider from the OAuth
// configuration.
func NewGoogleIdentityProvider(cfg config.OAuthConfig) (*GoogleIdentityProvider, error) {
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil, fmt.Errorf("google OAuth client credentials are not configured")
	}
	return &GoogleIdentityProvider{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}, nil
}

// AuthURL implements IdentityProvider.AuthURL.
func (p *GoogleIdentityProvider) AuthURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// ExchangeCode implements IdentityProvider.ExchangeCode.
func (p *GoogleIdentityProvider) ExchangeCode(
	ctx context.Context,
	code string,
) (*ExternalProfile, error) {
	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange failed: %v", ErrIdentityExchange, err)
	}

	info, err := p.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityExchange, err)
	}

	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("%w: provider returned incomplete profile", ErrIdentityExchange)
	}

	displayName := info.Name
	if displayName == "" {
		displayName = info.Email
	}

	return &ExternalProfile{
		ExternalID:  info.ID,
		DisplayName: displayName,
		Email:       info.Email,
		AvatarURL:   info.Picture,
	}, nil
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// fetchUserInfo retrieves user information from Google's userinfo endpoint.
func (p *GoogleIdentityProvider) fetchUserInfo(
	ctx context.Context,
	token *oauth2.Token,
) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user info request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &info, nil
}

// NewUserFromProfile builds a domain user from a verified external profile.
func NewUserFromProfile(profile *ExternalProfile) (*domain.User, error) {
	return domain.NewUser(profile.ExternalID, profile.DisplayName, profile.Email, profile.AvatarURL)
}
