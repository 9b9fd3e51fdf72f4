package models

import (
	"time"
)

// Ticket statuses as reported by the backend.
const (
	TicketOpen     = "open"
	TicketClaimed  = "claimed"
	TicketResolved = "resolved"
)

// PreferredContact is how the ticket creator wants to be reached.
// An empty value means no preference was set.
type PreferredContact string

const (
	PreferredNone    PreferredContact = ""
	PreferredEmail   PreferredContact = "Email"
	PreferredPhone   PreferredContact = "Phone"
	PreferredDiscord PreferredContact = "Discord"
)

type Ticket struct {
	ID           int              `json:"id"`
	Question     string           `json:"question"`
	Content      string           `json:"content"`
	Tags         []string         `json:"tags"`
	Location     string           `json:"location"`
	Creator      string           `json:"creator"`
	CreatorEmail string           `json:"creator_email"`
	Email        string           `json:"email"`
	Phone        string           `json:"phone"`
	Discord      string           `json:"discord"`
	Preferred    PreferredContact `json:"preferred"`
	Active       bool             `json:"active"`
	Status       string           `json:"status"` // open, claimed, resolved
	Images       []string         `json:"images"`
	CreatedAt    time.Time        `json:"createdAt"`

	// Claimant identity, empty while the ticket is unclaimed.
	MentorID   string `json:"mentor_id"`
	MentorName string `json:"mentor_name"`
}

// ContactValue returns the contact detail matching the creator's
// preference, or "" when the preferred field is empty on the ticket.
func (t Ticket) ContactValue() string {
	switch t.Preferred {
	case PreferredEmail:
		return t.Email
	case PreferredPhone:
		return t.Phone
	case PreferredDiscord:
		return t.Discord
	}
	return ""
}

// CountActive returns how many tickets in the slice are open for the
// queue view. Resolved and claimed-away tickets carry Active == false.
func CountActive(tickets []Ticket) int {
	n := 0
	for _, t := range tickets {
		if t.Active {
			n++
		}
	}
	return n
}
