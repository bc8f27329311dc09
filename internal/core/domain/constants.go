package domain

const (
	// SessionStatusCodeUndefined is the zero value of a session that has not
	// been persisted yet.
	SessionStatusCodeUndefined = iota
	// SessionStatusCodeAwaitingQuorum means the venue exists and the invite
	// link is live, waiting for two eligible participants to arrive.
	SessionStatusCodeAwaitingQuorum
	// SessionStatusCodeRoleSelectionOpen means quorum has been reached and
	// the buyer/seller prompt is live.
	SessionStatusCodeRoleSelectionOpen
	// SessionStatusCodeRolesConfirmed means both roles are held. Sessions
	// never rest in this status, it is immediately followed by
	// SettlementPending within the same mutation.
	SessionStatusCodeRolesConfirmed
	// SessionStatusCodeSettlementPending means both roles are held and the
	// daemon is collecting settlement addresses.
	SessionStatusCodeSettlementPending
	// SessionStatusCodeEscrowReady means both addresses are recorded and the
	// negotiation is handed over to the escrow operator.
	SessionStatusCodeEscrowReady
)

// DealType discriminates the kind of escrow negotiation hosted by a venue.
// Sequence numbers are unique per deal type.
type DealType int

const (
	DealTypeP2P DealType = iota
	DealTypeOther
)

func (t DealType) String() string {
	switch t {
	case DealTypeP2P:
		return "p2p"
	case DealTypeOther:
		return "other"
	default:
		return "unknown"
	}
}

// Role is one of the two mutually exclusive transactional roles of a
// session.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

func (r Role) IsValid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// Counterpart returns the opposite role.
func (r Role) Counterpart() Role {
	if r == RoleBuyer {
		return RoleSeller
	}
	return RoleBuyer
}

const (
	// SessionQuorum is the number of eligible participants required before
	// role selection opens. The creator and automation accounts never count.
	SessionQuorum = 2

	// MinSettlementAddressLength and MaxSettlementAddressLength bound the
	// shape check on submitted settlement addresses. This is a policy-level
	// sanity check, not on-chain validation.
	MinSettlementAddressLength = 20
	MaxSettlementAddressLength = 128
)
