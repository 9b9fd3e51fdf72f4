package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qstack-client/api"
	"qstack-client/models"
)

type recordingAnalytics struct {
	logins  []models.UserProfile
	logouts int
}

func (r *recordingAnalytics) OnLogin(p models.UserProfile) { r.logins = append(r.logins, p) }
func (r *recordingAnalytics) OnLogout()                    { r.logouts++ }

func userServer(t *testing.T, profile *models.UserProfile) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/whoami":
			json.NewEncoder(w).Encode(profile)
		case "/api/auth/logout":
			w.WriteHeader(http.StatusOK)
		case "/api/auth/set-phone":
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
}

func TestRefresh_IdentifiesOnLoginTransitionOnly(t *testing.T) {
	profile := &models.UserProfile{ID: "u1", Name: "Jess", LoggedIn: true}
	srv := userServer(t, profile)
	defer srv.Close()

	rec := &recordingAnalytics{}
	store := NewUserStore(api.NewClient(srv.URL, time.Second), rec)
	require.Equal(t, LoginUnknown, store.State())

	_, err := store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LoginIn, store.State())
	require.Len(t, rec.logins, 1)
	assert.Equal(t, "u1", rec.logins[0].ID)

	// Steady-state refresh fires nothing.
	store.Refresh(context.Background())
	assert.Len(t, rec.logins, 1)
	assert.Zero(t, rec.logouts)
}

func TestRefresh_LoggedOutResponseResetsAnalytics(t *testing.T) {
	profile := &models.UserProfile{ID: "u1", LoggedIn: true}
	srv := userServer(t, profile)
	defer srv.Close()

	rec := &recordingAnalytics{}
	store := NewUserStore(api.NewClient(srv.URL, time.Second), rec)
	store.Refresh(context.Background())

	profile.LoggedIn = false
	store.Refresh(context.Background())
	assert.Equal(t, LoginOut, store.State())
	assert.Equal(t, 1, rec.logouts)
}

func TestRefresh_FailureKeepsPriorState(t *testing.T) {
	profile := &models.UserProfile{ID: "u1", LoggedIn: true}
	srv := userServer(t, profile)

	rec := &recordingAnalytics{}
	store := NewUserStore(api.NewClient(srv.URL, time.Second), rec)
	store.Refresh(context.Background())
	srv.Close()

	_, err := store.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, LoginIn, store.State())
	assert.Equal(t, "u1", store.Profile().ID)
}

func TestLogout_ResetsStateAndFiresAnalytics(t *testing.T) {
	profile := &models.UserProfile{ID: "u1", LoggedIn: true}
	srv := userServer(t, profile)
	defer srv.Close()

	rec := &recordingAnalytics{}
	store := NewUserStore(api.NewClient(srv.URL, time.Second), rec)
	store.Refresh(context.Background())

	require.NoError(t, store.Logout(context.Background()))
	assert.Equal(t, LoginOut, store.State())
	assert.Empty(t, store.Profile().ID)
	assert.Equal(t, 1, rec.logouts)
}

func TestSetPhone_RejectsMalformedInputWithoutRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be sent for invalid input")
	}))
	defer srv.Close()

	store := NewUserStore(api.NewClient(srv.URL, time.Second), nil)

	// "abc123" normalizes to "123", which is not a valid number.
	res, err := store.SetPhone(context.Background(), "abc123")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "10 digits")
}

func TestSetPhone_SendsNormalizedNumber(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/set-phone":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			got = body["phone"]
			json.NewEncoder(w).Encode(map[string]any{"success": true})
		case "/api/auth/whoami":
			json.NewEncoder(w).Encode(models.UserProfile{LoggedIn: true})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	store := NewUserStore(api.NewClient(srv.URL, time.Second), nil)

	res, err := store.SetPhone(context.Background(), "(555) 123-4567")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "5551234567", got)
}

func TestConnectRequired(t *testing.T) {
	profile := &models.UserProfile{ID: "u1", LoggedIn: true, DiscordRequired: true}
	srv := userServer(t, profile)
	defer srv.Close()

	store := NewUserStore(api.NewClient(srv.URL, time.Second), nil)
	assert.False(t, store.ConnectRequired())

	store.Refresh(context.Background())
	assert.True(t, store.ConnectRequired())
}
