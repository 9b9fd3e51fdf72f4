package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"qstack-client/api"
	"qstack-client/config"
	"qstack-client/models"
	"qstack-client/monitoring"
	"qstack-client/utils"
)

// Arrival reports newly arrived tickets detected by a refresh cycle.
type Arrival struct {
	Count int
}

// QueueService reconciles polled backend state into a consistent local
// view: the sorted ticket list, the viewer's claim, and one arrival
// notification per burst of new tickets.
type QueueService struct {
	src   TicketSource
	api   *api.Client
	sound utils.Notifier

	cooldown time.Duration
	now      func() time.Time

	mu            sync.Mutex
	tickets       []models.Ticket
	claim         models.ClaimState
	prevActive    int
	cooldownUntil time.Time
}

func NewQueueService(src TicketSource, client *api.Client, cfg *config.Config, sound utils.Notifier) *QueueService {
	return &QueueService{
		src:      src,
		api:      client,
		sound:    sound,
		cooldown: cfg.NotifyCooldown,
		now:      time.Now,
	}
}

// Tickets returns the last successfully fetched, sorted ticket list.
func (s *QueueService) Tickets() []models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickets
}

// Claim returns the viewer's last known claim state.
func (s *QueueService) Claim() models.ClaimState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claim
}

// Events exposes the source's out-of-band change signal, nil for a
// poll-only source.
func (s *QueueService) Events() <-chan struct{} {
	return s.src.Events()
}

// RefreshTickets fetches the full ticket set, sorts it by creation
// time, and compares the active count against the previous cycle. An
// increase from a non-zero baseline emits one Arrival and one audio
// cue, then suppresses further emissions for the cooldown window. The
// first successful fetch never notifies. A fetch failure is fatal to
// the caller's view.
func (s *QueueService) RefreshTickets(ctx context.Context) ([]models.Ticket, *Arrival, error) {
	started := time.Now()
	tickets, err := s.src.Fetch(ctx)
	monitoring.TrackPoll("tickets", started, err)
	if err != nil {
		return nil, nil, fmt.Errorf("refresh tickets: %w", err)
	}

	slices.SortStableFunc(tickets, func(a, b models.Ticket) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	active := models.CountActive(tickets)
	var arrival *Arrival
	now := s.now()
	if s.prevActive > 0 && active > s.prevActive && !now.Before(s.cooldownUntil) {
		arrival = &Arrival{Count: active - s.prevActive}
		s.cooldownUntil = now.Add(s.cooldown)
		s.sound.Play()
		monitoring.TrackNotification()
	}
	s.prevActive = active
	s.tickets = tickets
	monitoring.TrackActiveTickets(active)

	return tickets, arrival, nil
}

// RefreshClaim fetches the viewer's claim. Failures leave the prior
// state untouched; only a successful response is applied.
func (s *QueueService) RefreshClaim(ctx context.Context) models.ClaimState {
	started := time.Now()
	claim, err := s.api.CheckClaimed(ctx)
	monitoring.TrackPoll("claim", started, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		s.claim = claim
	}
	return s.claim
}

// ClaimTicket issues the claim, then forces both refreshes. The result
// carries the backend's own success flag and message for a dismissible
// notice; only the forced ticket refresh can produce a fatal error.
func (s *QueueService) ClaimTicket(ctx context.Context, id int) (api.Result, error) {
	return s.mutate(ctx, func() (api.Result, error) {
		return s.api.Claim(ctx, id)
	})
}

// UnclaimTicket releases the viewer's claim on a ticket.
func (s *QueueService) UnclaimTicket(ctx context.Context, id int) (api.Result, error) {
	return s.mutate(ctx, func() (api.Result, error) {
		return s.api.Unclaim(ctx, id)
	})
}

// ResolveTicket marks a ticket resolved on behalf of its creator.
func (s *QueueService) ResolveTicket(ctx context.Context, id int, creator string) (api.Result, error) {
	return s.mutate(ctx, func() (api.Result, error) {
		return s.api.Resolve(ctx, id, creator)
	})
}

func (s *QueueService) mutate(ctx context.Context, call func() (api.Result, error)) (api.Result, error) {
	res, err := call()
	if err != nil {
		res = api.Result{OK: false, Message: err.Error()}
	}

	// No optimistic updates; the view is only as fresh as these.
	s.RefreshClaim(ctx)
	_, _, terr := s.RefreshTickets(ctx)
	return res, terr
}
