package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicket_JSONDecode(t *testing.T) {
	raw := `{
		"id": 42,
		"question": "Segfault in my allocator",
		"content": "<p>help</p>",
		"tags": ["c", "memory"],
		"location": "table 12",
		"creator": "Dana",
		"creator_email": "dana@example.com",
		"email": "dana@example.com",
		"phone": "5551234567",
		"discord": "dana#1234",
		"preferred": "Discord",
		"active": true,
		"status": "open",
		"images": [],
		"createdAt": "2026-02-14T10:30:00Z",
		"mentor_id": "",
		"mentor_name": ""
	}`

	var ticket Ticket
	require.NoError(t, json.Unmarshal([]byte(raw), &ticket))

	assert.Equal(t, 42, ticket.ID)
	assert.Equal(t, PreferredDiscord, ticket.Preferred)
	assert.Equal(t, TicketOpen, ticket.Status)
	assert.True(t, ticket.Active)
	assert.Equal(t, time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC), ticket.CreatedAt)
	assert.Equal(t, "dana#1234", ticket.ContactValue())
}

func TestTicket_ContactValue_NoPreference(t *testing.T) {
	ticket := Ticket{Email: "a@b.c", Phone: "5551234567", Discord: "x"}
	assert.Equal(t, "", ticket.ContactValue())
}

func TestCountActive(t *testing.T) {
	tickets := []Ticket{
		{ID: 1, Active: true},
		{ID: 2, Active: false},
		{ID: 3, Active: true},
	}
	assert.Equal(t, 2, CountActive(tickets))
	assert.Equal(t, 0, CountActive(nil))
}

func TestGraphNodeIDs_Namespaced(t *testing.T) {
	// A mentor and a ticket with the same backend identifier must not
	// collide inside one snapshot.
	assert.Equal(t, "mentor-7", MentorNodeID("7"))
	assert.Equal(t, "ticket-7", TicketNodeID(7))
	assert.NotEqual(t, MentorNodeID("7"), TicketNodeID(7))
}

func TestUserProfile_ConnectRequired(t *testing.T) {
	assert.False(t, UserProfile{}.ConnectRequired())
	assert.True(t, UserProfile{DiscordRequired: true}.ConnectRequired())
	assert.True(t, UserProfile{ContactRequired: true}.ConnectRequired())
}

func TestMentorRanking_JSONDecode(t *testing.T) {
	raw := `{"rank":1,"name":"Alice","num_resolved_tickets":9,"num_ratings":4,"average_rating":"4.5"}`

	var ranking MentorRanking
	require.NoError(t, json.Unmarshal([]byte(raw), &ranking))

	assert.Equal(t, 1, ranking.Rank)
	assert.True(t, ranking.AverageRating.Equal(decimal.RequireFromString("4.5")))
}
