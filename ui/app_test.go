package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qstack-client/api"
	"qstack-client/config"
	"qstack-client/models"
	"qstack-client/services"
	"qstack-client/utils"
)

func newTestApp(t *testing.T, profile models.UserProfile) (App, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/whoami":
			json.NewEncoder(w).Encode(profile)
		case "/api/queue":
			json.NewEncoder(w).Encode(map[string]any{"ok": true, "tickets": []models.Ticket{}})
		case "/api/queue/claimed":
			json.NewEncoder(w).Encode(map[string]any{"ok": true})
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		BaseURL:            srv.URL,
		TicketPollInterval: 5 * time.Second,
		ClaimPollInterval:  5 * time.Second,
		GraphPollInterval:  3 * time.Second,
		NotifyCooldown:     2 * time.Second,
	}
	client := api.NewClient(srv.URL, time.Second)
	users := services.NewUserStore(client, nil)
	queue := services.NewQueueService(services.NewPollSource(client), client, cfg, utils.Silent{})
	graph := services.NewGraphService(services.NewPollSource(client), users)

	return NewApp(context.Background(), cfg, users, queue, graph), srv
}

func resolveProfile(t *testing.T, a App) App {
	t.Helper()
	msg := a.fetchProfile()()
	model, _ := a.Update(msg)
	return model.(App)
}

func TestProfile_ConnectRequirementParksViewerOnConnect(t *testing.T) {
	a, _ := newTestApp(t, models.UserProfile{ID: "u1", LoggedIn: true, DiscordRequired: true})
	a = resolveProfile(t, a)
	require.Equal(t, RouteConnect, a.route)

	// Navigation away bounces back while the requirement holds.
	a, _ = a.navigate(RouteQueue)
	assert.Equal(t, RouteConnect, a.route)
}

func TestProfile_LoggedInLandsOnQueue(t *testing.T) {
	a, _ := newTestApp(t, models.UserProfile{ID: "u1", LoggedIn: true})
	a = resolveProfile(t, a)
	assert.Equal(t, RouteQueue, a.route)
}

func TestProfile_LoggedOutStaysHomeAndNeverPolls(t *testing.T) {
	a, _ := newTestApp(t, models.UserProfile{LoggedIn: false})
	a = resolveProfile(t, a)
	require.Equal(t, RouteHome, a.route)

	var cmd tea.Cmd
	a, cmd = a.navigate(RouteNetwork)
	assert.Equal(t, RouteHome, a.route)
	assert.Nil(t, cmd)
}

func TestTicketsError_IsFatalToTheView(t *testing.T) {
	a, _ := newTestApp(t, models.UserProfile{ID: "u1", LoggedIn: true})
	a = resolveProfile(t, a)
	require.Equal(t, RouteQueue, a.route)

	model, _ := a.Update(ticketsMsg{err: assert.AnError})
	a = model.(App)
	assert.Equal(t, RouteError, a.route)
}

func TestTicketsError_AfterLeavingQueueIsDiscarded(t *testing.T) {
	a, _ := newTestApp(t, models.UserProfile{ID: "u1", LoggedIn: true})
	a = resolveProfile(t, a)
	require.Equal(t, RouteQueue, a.route)

	a.route = RouteRanking
	model, cmd := a.Update(ticketsMsg{err: assert.AnError})
	a = model.(App)
	assert.Equal(t, RouteRanking, a.route)
	assert.Nil(t, cmd)
}

func TestArrival_SetsNoticeThenFades(t *testing.T) {
	a, _ := newTestApp(t, models.UserProfile{ID: "u1", LoggedIn: true})

	model, cmd := a.Update(ticketsMsg{
		tickets: []models.Ticket{{ID: 1, Active: true}},
		arrival: &services.Arrival{Count: 2},
	})
	a = model.(App)
	assert.Equal(t, "2 new tickets", a.notice)
	require.NotNil(t, cmd)

	model, _ = a.Update(noticeFadeMsg{})
	a = model.(App)
	assert.Empty(t, a.notice)
}

func TestPollTicks_StopAfterRouteChange(t *testing.T) {
	a, _ := newTestApp(t, models.UserProfile{ID: "u1", LoggedIn: true})
	a = resolveProfile(t, a)
	require.Equal(t, RouteQueue, a.route)

	a.route = RouteRanking
	_, cmd := a.Update(ticketTickMsg{gen: a.mount})
	assert.Nil(t, cmd)
}

func TestPollTicks_RepeatNavigationKeepsOneChain(t *testing.T) {
	a, _ := newTestApp(t, models.UserProfile{ID: "u1", LoggedIn: true})
	a = resolveProfile(t, a)
	require.Equal(t, RouteQueue, a.route)
	stale := a.mount

	// Pressing the queue tab while already on the queue remounts it;
	// the earlier timer chain must die instead of doubling the rate.
	a, cmd := a.navigate(RouteQueue)
	require.NotNil(t, cmd)
	require.NotEqual(t, stale, a.mount)

	_, cmd = a.Update(ticketTickMsg{gen: stale})
	assert.Nil(t, cmd)
	_, cmd = a.Update(claimTickMsg{gen: stale})
	assert.Nil(t, cmd)

	_, cmd = a.Update(ticketTickMsg{gen: a.mount})
	assert.NotNil(t, cmd)
}

func TestMutationNotice_CarriesBackendMessage(t *testing.T) {
	a, _ := newTestApp(t, models.UserProfile{ID: "u1", LoggedIn: true})
	model, _ := a.Update(mutationMsg{result: api.Result{OK: false, Message: "already claimed"}})
	a = model.(App)
	assert.Equal(t, "already claimed", a.notice)
	assert.NotEqual(t, RouteError, a.route)
}

func TestQueueModel_CursorStaysInBounds(t *testing.T) {
	m := newQueueModel().setTickets([]models.Ticket{{ID: 1}, {ID: 2}})

	m = m.moveCursor(-1)
	assert.Equal(t, 0, m.cursor)

	m = m.moveCursor(5)
	assert.Equal(t, 1, m.cursor)

	m = m.setTickets([]models.Ticket{{ID: 1}})
	assert.Equal(t, 0, m.cursor)

	ticket, ok := m.selected()
	require.True(t, ok)
	assert.Equal(t, 1, ticket.ID)
}

func TestQueueModel_DetailShowsContactForOwnClaim(t *testing.T) {
	ticket := models.Ticket{
		ID:        3,
		Question:  "Build is broken",
		Content:   "make dies at link time",
		Creator:   "Dana",
		Location:  "table 12",
		Discord:   "dana#1234",
		Preferred: models.PreferredDiscord,
		Active:    true,
		Status:    models.TicketClaimed,
	}
	m := newQueueModel().setTickets([]models.Ticket{ticket})

	// Not our claim: detail without the contact line.
	out := m.detail(DefaultTheme, 80)
	assert.Contains(t, out, "Dana")
	assert.Contains(t, out, "table 12")
	assert.Contains(t, out, "make dies at link time")
	assert.NotContains(t, out, "dana#1234")

	m = m.setClaim(models.ClaimState{TicketID: 3, Claimed: true})
	out = m.detail(DefaultTheme, 80)
	assert.Contains(t, out, "dana#1234")
	assert.Contains(t, out, string(models.PreferredDiscord))

	view := m.view(DefaultTheme, 80, 24)
	assert.Contains(t, view, "dana#1234")
}

func TestTruncate_KeepsRunesIntact(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 10))
	got := truncate("héllo wörld", 8)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "héllo w…", got)
}

func TestQueueModel_EmptySelection(t *testing.T) {
	m := newQueueModel()
	_, ok := m.selected()
	assert.False(t, ok)
}

func TestNextPreferred_CyclesThroughMethods(t *testing.T) {
	assert.Equal(t, models.PreferredEmail, nextPreferred(models.PreferredNone))
	assert.Equal(t, models.PreferredPhone, nextPreferred(models.PreferredEmail))
	assert.Equal(t, models.PreferredDiscord, nextPreferred(models.PreferredPhone))
	assert.Equal(t, models.PreferredEmail, nextPreferred(models.PreferredDiscord))
}
