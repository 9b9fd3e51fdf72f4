package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qstack-client/internal/status"
	"qstack-client/models"
)

type fixedSession bool

func (s fixedSession) LoggedIn() bool { return bool(s) }

func TestBuildSnapshot_EveryTicketBecomesANode(t *testing.T) {
	tickets := []models.Ticket{
		{ID: 1, Question: "wifi down"},
		{ID: 2, Question: "docker help", MentorID: "m1", MentorName: "Alice"},
		{ID: 3, Question: "css grid"},
	}

	snap := BuildSnapshot(tickets)

	var ticketNodes, mentorNodes int
	for _, n := range snap.Nodes {
		switch n.Kind {
		case models.NodeTicket:
			ticketNodes++
		case models.NodeMentor:
			mentorNodes++
		}
	}
	assert.Equal(t, 3, ticketNodes)
	assert.Equal(t, 1, mentorNodes)
}

func TestBuildSnapshot_SharedMentorDeduplicated(t *testing.T) {
	tickets := []models.Ticket{
		{ID: 1, MentorID: "m1", MentorName: "Alice"},
		{ID: 2, MentorID: "m1", MentorName: "Alice B."},
	}

	snap := BuildSnapshot(tickets)

	var mentors []models.GraphNode
	for _, n := range snap.Nodes {
		if n.Kind == models.NodeMentor {
			mentors = append(mentors, n)
		}
	}
	require.Len(t, mentors, 1)
	assert.Equal(t, "mentor-m1", mentors[0].ID)
	// First-seen name wins.
	assert.Equal(t, "Alice", mentors[0].Name)

	require.Len(t, snap.Links, 2)
	for _, l := range snap.Links {
		assert.Equal(t, "mentor-m1", l.Source)
	}
}

func TestBuildSnapshot_ClaimantWithoutNameProducesNothing(t *testing.T) {
	tickets := []models.Ticket{
		{ID: 1, MentorID: "m1"},
	}

	snap := BuildSnapshot(tickets)

	require.Len(t, snap.Nodes, 1)
	assert.Equal(t, models.NodeTicket, snap.Nodes[0].Kind)
	assert.Empty(t, snap.Links)
}

func TestBuildSnapshot_LinkStatusFollowsTicket(t *testing.T) {
	tickets := []models.Ticket{
		{ID: 1, Status: models.TicketClaimed, MentorID: "m1", MentorName: "Alice"},
		{ID: 2, Status: models.TicketResolved, MentorID: "m1", MentorName: "Alice"},
	}

	snap := BuildSnapshot(tickets)
	require.Len(t, snap.Links, 2)
	assert.Equal(t, models.LinkActive, snap.Links[0].Status)
	assert.Equal(t, models.LinkResolved, snap.Links[1].Status)
}

func TestBuildSnapshot_LinkEndpointsExist(t *testing.T) {
	tickets := []models.Ticket{
		{ID: 1, MentorID: "m1", MentorName: "Alice"},
		{ID: 2, MentorID: "m2", MentorName: "Bob"},
		{ID: 3},
	}

	snap := BuildSnapshot(tickets)
	ids := make(map[string]bool)
	for _, n := range snap.Nodes {
		assert.False(t, ids[n.ID], "duplicate node id %s", n.ID)
		ids[n.ID] = true
	}
	for _, l := range snap.Links {
		assert.True(t, ids[l.Source])
		assert.True(t, ids[l.Target])
	}
}

func TestBuildSnapshot_RebuildIsIdempotent(t *testing.T) {
	tickets := []models.Ticket{
		{ID: 1, Question: "wifi down", Status: models.TicketOpen},
		{ID: 2, Question: "docker help", Status: models.TicketClaimed, MentorID: "m1", MentorName: "Alice"},
		{ID: 3, Question: "oom", Status: models.TicketResolved, MentorID: "m1", MentorName: "Alice"},
	}

	first := BuildSnapshot(tickets)
	second := BuildSnapshot(tickets)

	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.Links, second.Links)
}

func TestSnapshot_RequiresLogin(t *testing.T) {
	svc := NewGraphService(&fakeSource{}, fixedSession(false))

	_, err := svc.Snapshot(context.Background())
	assert.ErrorIs(t, err, status.ErrNotAuthenticated)
}

func TestSnapshot_BuildsFromFetchedTickets(t *testing.T) {
	src := &fakeSource{batches: [][]models.Ticket{{
		{ID: 1, Active: true, CreatedAt: time.Now(), MentorID: "m1", MentorName: "Alice"},
	}}}
	svc := NewGraphService(src, fixedSession(true))

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Nodes, 2)
	assert.Len(t, snap.Links, 1)
}
