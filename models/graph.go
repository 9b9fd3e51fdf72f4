package models

import (
	"fmt"
)

// Node kinds in the mentor network graph.
const (
	NodeMentor = "mentor"
	NodeTicket = "ticket"
)

// Link statuses.
const (
	LinkActive   = "active"
	LinkResolved = "resolved"
)

// Visual radii. Mentors render larger than tickets.
const (
	MentorRadius = 12.0
	TicketRadius = 8.0
)

// GraphNode is one node of the mentor/ticket network view-model. It
// carries identity and status only; positions belong to the running
// layout simulation.
type GraphNode struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"`
	Name   string  `json:"name"`
	Status string  `json:"status,omitempty"` // tickets only: open, claimed, resolved
	Radius float64 `json:"radius"`
}

// GraphLink is a directed association from a mentor node to a ticket
// node it has claimed.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Status string `json:"status"` // active, resolved
}

// GraphSnapshot is a point-in-time projection of the ticket list,
// rebuilt from scratch on every graph poll cycle.
type GraphSnapshot struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// MentorNodeID namespaces a mentor identifier so it can never collide
// with a ticket node even if the backend identifiers coincide.
func MentorNodeID(mentorID string) string {
	return "mentor-" + mentorID
}

// TicketNodeID namespaces a ticket identifier.
func TicketNodeID(ticketID int) string {
	return fmt.Sprintf("ticket-%d", ticketID)
}
