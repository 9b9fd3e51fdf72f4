package services

import (
	"context"
	"log"

	pubnub "github.com/pubnub/go/v7"

	"qstack-client/api"
	"qstack-client/config"
	"qstack-client/models"
)

// PushSource fetches tickets over REST like PollSource does, but also
// subscribes to the queue channel so consumers can refresh as soon as
// the backend announces a change instead of waiting out the interval.
type PushSource struct {
	api    *api.Client
	pn     *pubnub.PubNub
	lis    *pubnub.Listener
	events chan struct{}
}

func NewPushSource(ctx context.Context, client *api.Client, cfg *config.Config) *PushSource {
	pnCfg := pubnub.NewConfigWithUserId(pubnub.UserId("qstack-client"))
	pnCfg.SubscribeKey = cfg.PubNubSubscribeKey
	pnCfg.SecretKey = cfg.PubNubSecretKey

	s := &PushSource{
		api:    client,
		pn:     pubnub.NewPubNub(pnCfg),
		lis:    pubnub.NewListener(),
		events: make(chan struct{}, 1),
	}
	s.pn.AddListener(s.lis)

	go s.processSubscription(ctx)

	s.pn.Subscribe().
		Channels([]string{cfg.PubNubChannel}).
		Execute()

	return s
}

func (s *PushSource) Fetch(ctx context.Context) ([]models.Ticket, error) {
	return s.api.Tickets(ctx)
}

func (s *PushSource) Events() <-chan struct{} {
	return s.events
}

func (s *PushSource) processSubscription(ctx context.Context) {
	for {
		select {
		case st := <-s.lis.Status:
			switch st.Category {
			case pubnub.PNConnectedCategory:
				log.Println("connected to pubnub")
			case pubnub.PNReconnectedCategory:
				log.Println("reconnected to pubnub")
			case pubnub.PNDisconnectedCategory:
				log.Println("disconnected from pubnub")
			default:
			}

		case <-s.lis.Message:
			// Any message on the queue channel means the set changed.
			// The payload itself is not trusted; the next fetch is.
			select {
			case s.events <- struct{}{}:
			default:
			}

		case <-ctx.Done():
			s.pn.UnsubscribeAll()
			return
		}
	}
}
