package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qstack-client/internal/status"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewClient(server.URL, 2*time.Second), server
}

func TestClient_Tickets_Decode(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/queue", r.URL.Path)
		w.Write([]byte(`{"ok":true,"tickets":[
			{"id":1,"question":"q1","active":true,"createdAt":"2026-02-14T10:00:00Z"},
			{"id":2,"question":"q2","active":false,"createdAt":"2026-02-14T11:00:00Z"}
		]}`))
	})
	defer server.Close()

	tickets, err := client.Tickets(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, 1, tickets[0].ID)
	assert.True(t, tickets[0].Active)
	assert.False(t, tickets[1].Active)
}

func TestClient_Tickets_BackendFailure(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false}`))
	})
	defer server.Close()

	_, err := client.Tickets(context.Background())
	assert.ErrorIs(t, err, status.ErrBackend)
}

func TestClient_Tickets_TransportFailure(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {})
	server.Close() // connection refused from here on

	_, err := client.Tickets(context.Background())
	assert.ErrorIs(t, err, status.ErrTransport)
}

func TestClient_Tickets_MalformedBody(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"tickets":`))
	})
	defer server.Close()

	_, err := client.Tickets(context.Background())
	assert.ErrorIs(t, err, status.ErrTransport)
}

func TestClient_CheckClaimed_Present(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"claimed":"7"}`))
	})
	defer server.Close()

	claim, err := client.CheckClaimed(context.Background())
	require.NoError(t, err)
	assert.True(t, claim.Claimed)
	assert.Equal(t, 7, claim.TicketID)
}

func TestClient_CheckClaimed_Absent(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})
	defer server.Close()

	claim, err := client.CheckClaimed(context.Background())
	require.NoError(t, err)
	assert.False(t, claim.Claimed)
}

func TestClient_CheckClaimed_NonNumeric(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"claimed":"abc"}`))
	})
	defer server.Close()

	_, err := client.CheckClaimed(context.Background())
	assert.ErrorIs(t, err, status.ErrTransport)
}

func TestClient_Claim_ResultPassthrough(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"ok":false,"message":"Ticket already claimed"}`))
	})
	defer server.Close()

	res, err := client.Claim(context.Background(), 3)
	require.NoError(t, err) // logical failure is not a transport error
	assert.False(t, res.OK)
	assert.Equal(t, "Ticket already claimed", res.Message)
}

func TestClient_SetPhone_Translated(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"invalid number"}`))
	})
	defer server.Close()

	res, err := client.SetPhone(context.Background(), "123")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "invalid number", res.Message)
}

func TestClient_Whoami(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"loggedIn":true,"name":"Dana","role":"mentor","discordRequired":true}`))
	})
	defer server.Close()

	profile, err := client.Whoami(context.Background())
	require.NoError(t, err)
	assert.True(t, profile.LoggedIn)
	assert.True(t, profile.ConnectRequired())
	assert.Equal(t, "Dana", profile.Name)
}

func TestClient_ServerError_IsTransport(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	_, err := client.Whoami(context.Background())
	assert.ErrorIs(t, err, status.ErrTransport)
	assert.False(t, errors.Is(err, status.ErrBackend))
}
