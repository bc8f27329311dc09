package ports

import (
	"context"

	"github.com/escrow-network/escrow-daemon/internal/core/domain"
)

// VenueInfo is what the platform reports back after creating a group.
type VenueInfo struct {
	// VenueId is the stable identifier the platform assigned to the group.
	// It becomes the session id.
	VenueId string
	// InviteLink is the join link exported for the fresh group.
	InviteLink string
}

// PlatformClient is the interface the daemon expects from a chat-platform
// adapter. The daemon treats every call as fire-and-forget with respect to
// session progress, except CreateVenue whose failure aborts deal creation.
// Group creation, admin promotion fallbacks, message rendering and button
// layout all live behind this interface.
type PlatformClient interface {
	// CreateVenue creates a private group for a new deal, labels it with
	// the sequence number and returns its id and invite link.
	CreateVenue(
		ctx context.Context,
		dealType domain.DealType,
		sequenceNumber uint64,
		creatorId string,
	) (*VenueInfo, error)
	// SendMessage renders the template identified by templateKey with the
	// given params and posts it to the venue. It returns a reference usable
	// with PinMessage.
	SendMessage(
		ctx context.Context,
		venueId, templateKey string,
		params map[string]string,
	) (messageRef string, err error)
	// PinMessage pins a previously sent message in the venue.
	PinMessage(ctx context.Context, venueId, messageRef string) error
	// RevokeJoinCapability retires the venue's invite link so nobody else
	// can join.
	RevokeJoinCapability(ctx context.Context, venueId string) error
}
