package google_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/chat-nexa/account-service/account/social/google"
)

func TestAuthCodeURL(t *testing.T) {
	provider := google.New(google.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "https://example.com/auth/google/callback",
	})

	url := provider.AuthCodeURL("state-123")

	assert.Contains(t, url, "accounts.google.com")
	assert.Contains(t, url, "client_id=client-id")
	assert.Contains(t, url, "state=state-123")
	assert.Contains(t, url, "scope=openid+email+profile")
}

func TestFetchProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"google-sub-123","email":"ada@x.com","name":"Ada","picture":"https://lh3.example.com/ada.png"}`))
	}))
	defer server.Close()

	provider := google.New(google.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "https://example.com/auth/google/callback",
		UserInfoURL:  server.URL,
	})

	profile, err := provider.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "access"})
	require.NoError(t, err)

	assert.Equal(t, "google-sub-123", profile.Sub)
	assert.Equal(t, "ada@x.com", profile.Email)
	assert.Equal(t, "Ada", profile.Name)
	assert.Equal(t, "https://lh3.example.com/ada.png", profile.Picture)
}

func TestFetchProfileErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	provider := google.New(google.Config{UserInfoURL: server.URL})

	_, err := provider.FetchProfile(context.Background(), &oauth2.Token{AccessToken: "access"})
	assert.Error(t, err)
}
