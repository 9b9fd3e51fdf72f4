package services

import (
	"context"

	"qstack-client/api"
	"qstack-client/models"
)

// TicketSource supplies the full ticket set. The baseline is polling
// against the REST backend; a push transport can additionally expose
// an Events channel that nudges the consumer to fetch early.
type TicketSource interface {
	// Fetch returns the complete ticket set.
	Fetch(ctx context.Context) ([]models.Ticket, error)

	// Events returns a channel that fires when the source learns the
	// set changed out of band. A poll-only source returns nil.
	Events() <-chan struct{}
}

// PollSource fetches tickets over REST and has no out-of-band signal.
type PollSource struct {
	api *api.Client
}

func NewPollSource(client *api.Client) *PollSource {
	return &PollSource{api: client}
}

func (p *PollSource) Fetch(ctx context.Context) ([]models.Ticket, error) {
	return p.api.Tickets(ctx)
}

func (p *PollSource) Events() <-chan struct{} { return nil }
