package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qstack-client/config"
	"qstack-client/models"
)

func TestNewCollector_DisabledWithoutURL(t *testing.T) {
	c := NewCollector(&config.Config{})
	assert.Nil(t, c)
}

func TestOnLogin_CapturesIdentify(t *testing.T) {
	events := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/capture", r.URL.Path)
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		events <- body
	}))
	defer srv.Close()

	c := NewCollector(&config.Config{AnalyticsURL: srv.URL, AnalyticsKey: "k1"})
	require.NotNil(t, c)

	c.OnLogin(models.UserProfile{ID: "u1", Name: "Jess", Role: models.RoleMentor})

	select {
	case body := <-events:
		assert.Equal(t, "$identify", body["event"])
		assert.Equal(t, "u1", body["distinct_id"])
		assert.Equal(t, "k1", body["api_key"])
	case <-time.After(2 * time.Second):
		t.Fatal("no capture request arrived")
	}
}

func TestOnLogout_CapturesSessionEnd(t *testing.T) {
	events := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		events <- body
	}))
	defer srv.Close()

	c := NewCollector(&config.Config{AnalyticsURL: srv.URL})
	c.OnLogout()

	select {
	case body := <-events:
		assert.Equal(t, "session_end", body["event"])
	case <-time.After(2 * time.Second):
		t.Fatal("no capture request arrived")
	}
}
