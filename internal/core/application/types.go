package application

import (
	"github.com/escrow-network/escrow-daemon/internal/core/domain"
)

// Commands and button actions understood by the orchestrator. The platform
// adapter is responsible for mapping whatever its chat surface produces
// (slash commands, callback payloads) onto these.
const (
	CommandBeginSession  = "begin-session"
	CommandSubmitAddress = "submit-address"

	ActionClaimBuyer  = "claim-buyer"
	ActionClaimSeller = "claim-seller"
)

// Template keys carried by outbound sends. Rendering is adapter-side.
const (
	TemplateVenueCreated      = "venue_created"
	TemplateParticipantJoined = "participant_joined"
	TemplateInviteRevoked     = "invite_revoked"
	TemplateRolePrompt        = "role_prompt"
	TemplateRoleConfirmed     = "role_confirmed"
	TemplateAddressRequest    = "address_request"
	TemplateAddressRecorded   = "address_recorded"
	TemplateEscrowReady       = "escrow_ready"
)

// ClaimOutcome is the user-visible result of a role claim.
type ClaimOutcome int

const (
	ClaimConfirmed ClaimOutcome = iota
	ClaimAlreadyChosenBySelf
	ClaimRoleTaken
	ClaimNotEligible
)

func (o ClaimOutcome) String() string {
	switch o {
	case ClaimConfirmed:
		return "confirmed"
	case ClaimAlreadyChosenBySelf:
		return "already_chosen"
	case ClaimRoleTaken:
		return "role_taken"
	default:
		return "not_eligible"
	}
}

// SubmitOutcome is the user-visible result of an address submission.
type SubmitOutcome int

const (
	SubmitAccepted SubmitOutcome = iota
	SubmitWrongRoleOrNoRole
	SubmitAlreadySubmitted
	SubmitMalformed
)

func (o SubmitOutcome) String() string {
	switch o {
	case SubmitAccepted:
		return "accepted"
	case SubmitWrongRoleOrNoRole:
		return "wrong_role_or_no_role"
	case SubmitAlreadySubmitted:
		return "already_submitted"
	default:
		return "malformed"
	}
}

// DealInfo is returned to the creator after a successful deal creation.
type DealInfo struct {
	SessionId      string
	DealType       domain.DealType
	SequenceNumber uint64
	InviteLink     string
}
