package models

// ClaimState is the viewer's current claim as reported by the backend.
// The server enforces at most one claim per mentor; the client never
// infers claims locally.
type ClaimState struct {
	TicketID int  `json:"ticket_id"`
	Claimed  bool `json:"claimed"`
}

// Unclaimed is the zero claim state.
var Unclaimed = ClaimState{}
