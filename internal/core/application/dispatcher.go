package application

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"

	"github.com/escrow-network/escrow-daemon/internal/core/domain"
	"github.com/escrow-network/escrow-daemon/internal/core/ports"
	"github.com/escrow-network/escrow-daemon/pkg/circuitbreaker"
)

// dispatcher funnels every outbound platform call through a shared circuit
// breaker and a send rate limiter. Chat platforms throttle bots that post
// too fast; the limiter paces messages while revocations and pins pass
// through unpaced since they are rare and edge-bound.
type dispatcher struct {
	platform ports.PlatformClient
	cb       *gobreaker.CircuitBreaker
	limiter  ratelimit.Limiter
}

func newDispatcher(platform ports.PlatformClient, sendsPerSecond int) *dispatcher {
	if sendsPerSecond <= 0 {
		sendsPerSecond = 20
	}
	return &dispatcher{
		platform: platform,
		cb:       circuitbreaker.NewCircuitBreaker("platform"),
		limiter:  ratelimit.New(sendsPerSecond),
	}
}

func (d *dispatcher) createVenue(
	ctx context.Context,
	dealType domain.DealType,
	seqNum uint64,
	creatorId string,
) (*ports.VenueInfo, error) {
	venue, err := d.cb.Execute(func() (interface{}, error) {
		return d.platform.CreateVenue(ctx, dealType, seqNum, creatorId)
	})
	if err != nil {
		return nil, err
	}
	return venue.(*ports.VenueInfo), nil
}

// send posts a templated message, logging and swallowing adapter failures.
// Sends are fire-and-forget with respect to session progress.
func (d *dispatcher) send(
	ctx context.Context,
	venueId, templateKey string,
	params map[string]string,
) (string, error) {
	d.limiter.Take()
	ref, err := d.cb.Execute(func() (interface{}, error) {
		return d.platform.SendMessage(ctx, venueId, templateKey, params)
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"session":  venueId,
			"template": templateKey,
		}).Warn("failed to send message")
		return "", err
	}
	return ref.(string), nil
}

func (d *dispatcher) pin(ctx context.Context, venueId, messageRef string) error {
	_, err := d.cb.Execute(func() (interface{}, error) {
		return nil, d.platform.PinMessage(ctx, venueId, messageRef)
	})
	return err
}

func (d *dispatcher) revokeJoinCapability(ctx context.Context, venueId string) error {
	_, err := d.cb.Execute(func() (interface{}, error) {
		return nil, d.platform.RevokeJoinCapability(ctx, venueId)
	})
	return err
}
