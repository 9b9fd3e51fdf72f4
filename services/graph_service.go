package services

import (
	"context"
	"fmt"
	"time"

	"qstack-client/internal/status"
	"qstack-client/models"
	"qstack-client/monitoring"
)

// Session is the slice of the user store the graph poller needs.
type Session interface {
	LoggedIn() bool
}

// GraphService projects the polled ticket set into a graph snapshot of
// mentors and the tickets they hold. It only polls while a viewer is
// authenticated.
type GraphService struct {
	src     TicketSource
	session Session
}

func NewGraphService(src TicketSource, session Session) *GraphService {
	return &GraphService{src: src, session: session}
}

// Snapshot fetches the ticket set and rebuilds the graph from scratch.
func (g *GraphService) Snapshot(ctx context.Context) (models.GraphSnapshot, error) {
	if !g.session.LoggedIn() {
		return models.GraphSnapshot{}, status.ErrNotAuthenticated
	}

	started := time.Now()
	tickets, err := g.src.Fetch(ctx)
	monitoring.TrackPoll("graph", started, err)
	if err != nil {
		return models.GraphSnapshot{}, fmt.Errorf("graph snapshot: %w", err)
	}

	snap := BuildSnapshot(tickets)
	monitoring.TrackSnapshot(len(snap.Nodes)-len(tickets), len(tickets))
	return snap, nil
}

// BuildSnapshot maps tickets to graph nodes and links. Every ticket
// becomes a node. A mentor node appears once a ticket carries both a
// claimant id and a display name, de-duplicated across tickets with
// the first-seen name winning, and each such ticket links from its
// mentor with status resolved or active following the ticket.
func BuildSnapshot(tickets []models.Ticket) models.GraphSnapshot {
	var snap models.GraphSnapshot
	seen := make(map[string]bool)

	for _, t := range tickets {
		if t.MentorID != "" && t.MentorName != "" && !seen[t.MentorID] {
			seen[t.MentorID] = true
			snap.Nodes = append(snap.Nodes, models.GraphNode{
				ID:     models.MentorNodeID(t.MentorID),
				Kind:   models.NodeMentor,
				Name:   t.MentorName,
				Radius: models.MentorRadius,
			})
		}
	}

	for _, t := range tickets {
		snap.Nodes = append(snap.Nodes, models.GraphNode{
			ID:     models.TicketNodeID(t.ID),
			Kind:   models.NodeTicket,
			Name:   t.Question,
			Status: t.Status,
			Radius: models.TicketRadius,
		})
		if t.MentorID == "" || t.MentorName == "" {
			continue
		}
		linkStatus := models.LinkActive
		if t.Status == models.TicketResolved {
			linkStatus = models.LinkResolved
		}
		snap.Links = append(snap.Links, models.GraphLink{
			Source: models.MentorNodeID(t.MentorID),
			Target: models.TicketNodeID(t.ID),
			Status: linkStatus,
		})
	}

	return snap
}
