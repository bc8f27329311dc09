package platforminmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thanhpk/randstr"

	"github.com/escrow-network/escrow-daemon/internal/core/domain"
	"github.com/escrow-network/escrow-daemon/internal/core/ports"
)

// Message is an outbound message recorded by the in-memory platform.
type Message struct {
	Ref         string
	TemplateKey string
	Params      map[string]string
	Timestamp   int64
}

// Venue is a simulated chat group.
type Venue struct {
	Id            string
	Title         string
	InviteLink    string
	InviteRevoked bool
	Messages      []Message
	Pinned        []string
}

// Client is an in-process PlatformClient used for local sandbox runs and
// end-to-end tests. It records every outbound action for inspection instead
// of talking to a real chat platform.
type Client struct {
	locker *sync.Mutex
	venues map[string]*Venue
}

// NewClient returns an empty in-memory platform.
func NewClient() *Client {
	return &Client{
		locker: &sync.Mutex{},
		venues: map[string]*Venue{},
	}
}

func (c *Client) CreateVenue(
	_ context.Context,
	dealType domain.DealType,
	sequenceNumber uint64,
	creatorId string,
) (*ports.VenueInfo, error) {
	c.locker.Lock()
	defer c.locker.Unlock()

	venue := &Venue{
		Id:         uuid.New().String(),
		Title:      fmt.Sprintf("%s escrow #%02d", dealType.String(), sequenceNumber),
		InviteLink: "https://chat.invalid/join/" + randstr.Hex(16),
	}
	c.venues[venue.Id] = venue

	return &ports.VenueInfo{
		VenueId:    venue.Id,
		InviteLink: venue.InviteLink,
	}, nil
}

func (c *Client) SendMessage(
	_ context.Context, venueId, templateKey string, params map[string]string,
) (string, error) {
	c.locker.Lock()
	defer c.locker.Unlock()

	venue, ok := c.venues[venueId]
	if !ok {
		return "", fmt.Errorf("unknown venue %s", venueId)
	}

	msg := Message{
		Ref:         uuid.New().String(),
		TemplateKey: templateKey,
		Params:      params,
		Timestamp:   time.Now().Unix(),
	}
	venue.Messages = append(venue.Messages, msg)
	return msg.Ref, nil
}

func (c *Client) PinMessage(_ context.Context, venueId, messageRef string) error {
	c.locker.Lock()
	defer c.locker.Unlock()

	venue, ok := c.venues[venueId]
	if !ok {
		return fmt.Errorf("unknown venue %s", venueId)
	}
	venue.Pinned = append(venue.Pinned, messageRef)
	return nil
}

func (c *Client) RevokeJoinCapability(_ context.Context, venueId string) error {
	c.locker.Lock()
	defer c.locker.Unlock()

	venue, ok := c.venues[venueId]
	if !ok {
		return fmt.Errorf("unknown venue %s", venueId)
	}
	venue.InviteRevoked = true
	return nil
}

// Venue returns a snapshot of the simulated venue, for inspection in tests.
func (c *Client) Venue(venueId string) (Venue, bool) {
	c.locker.Lock()
	defer c.locker.Unlock()

	venue, ok := c.venues[venueId]
	if !ok {
		return Venue{}, false
	}

	snapshot := *venue
	snapshot.Messages = append([]Message(nil), venue.Messages...)
	snapshot.Pinned = append([]string(nil), venue.Pinned...)
	return snapshot, true
}

// MessagesByTemplate returns the recorded messages of a venue with the
// given template key.
func (c *Client) MessagesByTemplate(venueId, templateKey string) []Message {
	venue, ok := c.Venue(venueId)
	if !ok {
		return nil
	}

	msgs := make([]Message, 0)
	for _, m := range venue.Messages {
		if m.TemplateKey == templateKey {
			msgs = append(msgs, m)
		}
	}
	return msgs
}
