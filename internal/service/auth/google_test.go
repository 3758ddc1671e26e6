package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskraft/taskraft-api/internal/config"
	"golang.org/x/oauth2"
)

func testOAuthConfig() config.OAuthConfig {
	return config.OAuthConfig{
		GoogleClientID:     "client-id",
		GoogleClientSecret: "client-secret",
		RedirectURL:        "https://api.example.com/auth/google/callback",
	}
}

// newFakeGoogle stands up a local server that plays both the token endpoint
// and the userinfo endpoint, and points the provider at it.
func newFakeGoogle(t *testing.T, userInfoStatus int, userInfoBody string) *GoogleIdentityProvider {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fake-access","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(userInfoStatus)
		fmt.Fprint(w, userInfoBody)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	provider, err := NewGoogleIdentityProvider(testOAuthConfig())
	require.NoError(t, err)
	provider.oauthConfig.Endpoint = oauth2.Endpoint{
		AuthURL:  server.URL + "/auth",
		TokenURL: server.URL + "/token",
	}
	provider.userInfoURL = server.URL + "/userinfo"
	return provider
}

func TestNewGoogleIdentityProvider(t *testing.T) {
	t.Parallel()

	t.Run("requires client credentials", func(t *testing.T) {
		t.Parallel()
		_, err := NewGoogleIdentityProvider(config.OAuthConfig{})
		assert.Error(t, err)
	})
}

func TestGoogleAuthURL(t *testing.T) {
	t.Parallel()
	provider, err := NewGoogleIdentityProvider(testOAuthConfig())
	require.NoError(t, err)

	url := provider.AuthURL("anti-forgery-state")
	assert.Contains(t, url, "state=anti-forgery-state")
	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "scope=openid")
}

func TestGoogleExchangeCode(t *testing.T) {
	t.Parallel()

	t.Run("returns the verified profile", func(t *testing.T) {
		t.Parallel()
		provider := newFakeGoogle(t, http.StatusOK, `{
			"id": "108973412345",
			"email": "alice@example.com",
			"verified_email": true,
			"name": "Alice Example",
			"picture": "https://img.example.com/alice.png"
		}`)

		profile, err := provider.ExchangeCode(context.Background(), "auth-code")
		require.NoError(t, err)
		assert.Equal(t, "108973412345", profile.ExternalID)
		assert.Equal(t, "Alice Example", profile.DisplayName)
		assert.Equal(t, "alice@example.com", profile.Email)
		assert.Equal(t, "https://img.example.com/alice.png", profile.AvatarURL)
	})

	t.Run("display name falls back to email", func(t *testing.T) {
		t.Parallel()
		provider := newFakeGoogle(t, http.StatusOK,
			`{"id": "123", "email": "alice@example.com"}`)

		profile, err := provider.ExchangeCode(context.Background(), "auth-code")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", profile.DisplayName)
	})

	t.Run("incomplete profile is rejected", func(t *testing.T) {
		t.Parallel()
		provider := newFakeGoogle(t, http.StatusOK, `{"name": "No Subject"}`)

		_, err := provider.ExchangeCode(context.Background(), "auth-code")
		assert.ErrorIs(t, err, ErrIdentityExchange)
	})

	t.Run("userinfo failure", func(t *testing.T) {
		t.Parallel()
		provider := newFakeGoogle(t, http.StatusInternalServerError, `{}`)

		_, err := provider.ExchangeCode(context.Background(), "auth-code")
		assert.ErrorIs(t, err, ErrIdentityExchange)
	})
}

func TestNewUserFromProfile(t *testing.T) {
	t.Parallel()

	user, err := NewUserFromProfile(&ExternalProfile{
		ExternalID:  "sub-1",
		DisplayName: "Alice",
		Email:       "alice@example.com",
		AvatarURL:   "https://img.example.com/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "sub-1", user.ExternalID)
	assert.Equal(t, "Alice", user.DisplayName)

	_, err = NewUserFromProfile(&ExternalProfile{
		ExternalID:  "sub-2",
		DisplayName: "Bob",
		Email:       "not-an-email",
	})
	assert.Error(t, err)
}
