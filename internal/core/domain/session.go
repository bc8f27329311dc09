package domain

import (
	"time"
)

// SessionStatus represents the different statuses that a session can assume.
// Abandoned marks a terminal status reached from any non-ready one.
type SessionStatus struct {
	Code      int
	Abandoned bool
}

// Settlement holds the address submitted by a role holder.
type Settlement struct {
	Address   string
	SetBy     string
	Timestamp int64
}

// MembershipDelta describes the effect of an arrival signal on a session.
type MembershipDelta struct {
	// Added is true if the arrival extended the eligible participant list.
	Added bool
	// QuorumReached is true only for the arrival that completed the quorum.
	// This is the edge that opens role selection and retires the invite.
	QuorumReached bool
}

// Session is the data structure representing an escrow negotiation and the
// venue hosting it. Role assignments and settlement records are embedded so
// that any transition touching more than one of them commits as a single
// record mutation.
type Session struct {
	Id             string
	DealType       DealType
	SequenceNumber uint64
	CreatorId      string
	Status         SessionStatus
	// Participants holds the eligible joiner ids in arrival order, capped at
	// SessionQuorum entries.
	Participants []string
	// Observers holds deduplicated arrivals in excess of the quorum. They
	// are kept for auditing and can never claim a role.
	Observers  []string
	InviteOpen bool
	Roles      map[Role]string
	RolesBy    map[string]Role
	// Settlements is keyed by role, one-shot per entry.
	Settlements map[Role]Settlement
	CreatedAt   int64
	UpdatedAt   int64
	AbandonedAt int64
}

// NewSession returns a session in AwaitingQuorum status for the given venue.
// The venue id is assigned by the platform and immutable from here on.
func NewSession(
	venueId string, dealType DealType, sequenceNumber uint64, creatorId string,
) *Session {
	now := time.Now().Unix()
	return &Session{
		Id:             venueId,
		DealType:       dealType,
		SequenceNumber: sequenceNumber,
		CreatorId:      creatorId,
		Status:         SessionStatus{Code: SessionStatusCodeAwaitingQuorum},
		Participants:   make([]string, 0, SessionQuorum),
		InviteOpen:     true,
		Roles:          map[Role]string{},
		RolesBy:        map[string]Role{},
		Settlements:    map[Role]Settlement{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RecordArrival folds a join signal into the participant list. The platform
// may deliver the same physical join more than once and through different
// detection mechanisms, so the operation is idempotent on the participant
// id. The session creator and automation accounts are never counted.
func (s *Session) RecordArrival(
	participantId string, isAutomation bool,
) (MembershipDelta, error) {
	if s.Status.Abandoned {
		return MembershipDelta{}, ErrSessionAbandoned
	}
	if participantId == s.CreatorId || isAutomation {
		return MembershipDelta{}, nil
	}
	if s.isParticipant(participantId) || s.isObserver(participantId) {
		return MembershipDelta{}, nil
	}

	if len(s.Participants) >= SessionQuorum {
		s.Observers = append(s.Observers, participantId)
		s.touch()
		return MembershipDelta{}, nil
	}

	s.Participants = append(s.Participants, participantId)
	s.touch()

	quorum := len(s.Participants) == SessionQuorum &&
		s.Status.Code == SessionStatusCodeAwaitingQuorum
	return MembershipDelta{Added: true, QuorumReached: quorum}, nil
}

// OpenRoleSelection advances the session from AwaitingQuorum to
// RoleSelectionOpen. A duplicate quorum signal finds the session already
// advanced and is a no-op.
func (s *Session) OpenRoleSelection() bool {
	if s.Status.Abandoned ||
		s.Status.Code != SessionStatusCodeAwaitingQuorum ||
		len(s.Participants) < SessionQuorum {
		return false
	}
	s.Status.Code = SessionStatusCodeRoleSelectionOpen
	s.touch()
	return true
}

// CloseInvite flips the invite flag, at most once. The caller emits the
// revoke action only when true is returned, which bounds the number of
// revocations to one no matter how many quorum signals are delivered.
func (s *Session) CloseInvite() bool {
	if !s.InviteOpen {
		return false
	}
	s.InviteOpen = false
	s.touch()
	return true
}

// ClaimRole assigns the requested role to the participant. Role choice is
// one-shot: a participant holding any role is rejected with
// ErrRoleAlreadyChosen, a role held by the counterpart is rejected with
// ErrRoleTaken. On success it reports whether both roles are now held, in
// which case the session has advanced to SettlementPending.
func (s *Session) ClaimRole(
	participantId string, role Role,
) (bothHeld bool, err error) {
	if !role.IsValid() {
		return false, ErrInvalidRole
	}
	if s.Status.Abandoned {
		return false, ErrSessionAbandoned
	}
	if s.Status.Code < SessionStatusCodeRoleSelectionOpen ||
		!s.isParticipant(participantId) {
		return false, ErrParticipantNotEligible
	}
	if _, ok := s.RolesBy[participantId]; ok {
		return false, ErrRoleAlreadyChosen
	}
	if holder, ok := s.Roles[role]; ok && holder != participantId {
		return false, ErrRoleTaken
	}

	s.Roles[role] = participantId
	s.RolesBy[participantId] = role
	s.touch()

	if len(s.Roles) == SessionQuorum {
		s.confirmRoles()
		return true, nil
	}
	return false, nil
}

// confirmRoles advances RoleSelectionOpen to SettlementPending. The
// RolesConfirmed status is never at rest: the follow-up transition to
// SettlementPending is immediate, so both happen in the same mutation.
func (s *Session) confirmRoles() {
	if s.Status.Code != SessionStatusCodeRoleSelectionOpen {
		return
	}
	s.Status.Code = SessionStatusCodeSettlementPending
}

// SubmitAddress records the settlement address of the role held by the
// participant. Submission is one-shot per role. On success it reports
// whether both addresses are now present, in which case the session has
// advanced to EscrowReady.
func (s *Session) SubmitAddress(
	participantId, address string,
) (bothPresent bool, err error) {
	if s.Status.Abandoned {
		return false, ErrSessionAbandoned
	}
	if len(address) < MinSettlementAddressLength ||
		len(address) > MaxSettlementAddressLength {
		return false, ErrMalformedAddress
	}

	role, ok := s.RolesBy[participantId]
	if !ok || s.Status.Code < SessionStatusCodeSettlementPending {
		return false, ErrNoRoleHeld
	}
	if _, ok := s.Settlements[role]; ok {
		return false, ErrAddressAlreadySubmitted
	}

	s.Settlements[role] = Settlement{
		Address:   address,
		SetBy:     participantId,
		Timestamp: time.Now().Unix(),
	}
	s.touch()

	if len(s.Settlements) == SessionQuorum &&
		s.Status.Code == SessionStatusCodeSettlementPending {
		s.Status.Code = SessionStatusCodeEscrowReady
		return true, nil
	}
	return false, nil
}

// Abandon moves a non-ready session to the terminal Abandoned status. The
// record is kept as an audit trail, it only stops accepting events.
func (s *Session) Abandon() bool {
	if s.Status.Abandoned || s.Status.Code >= SessionStatusCodeEscrowReady {
		return false
	}
	s.Status.Abandoned = true
	s.AbandonedAt = time.Now().Unix()
	s.touch()
	return true
}

// IsAwaitingQuorum returns whether the session is waiting for joiners.
func (s *Session) IsAwaitingQuorum() bool {
	return !s.Status.Abandoned &&
		s.Status.Code == SessionStatusCodeAwaitingQuorum
}

// IsRoleSelectionOpen returns whether the buyer/seller prompt is live.
func (s *Session) IsRoleSelectionOpen() bool {
	return !s.Status.Abandoned &&
		s.Status.Code == SessionStatusCodeRoleSelectionOpen
}

// IsSettlementPending returns whether the session is collecting addresses.
func (s *Session) IsSettlementPending() bool {
	return !s.Status.Abandoned &&
		s.Status.Code == SessionStatusCodeSettlementPending
}

// IsEscrowReady returns whether both roles and both addresses are in.
func (s *Session) IsEscrowReady() bool {
	return s.Status.Code == SessionStatusCodeEscrowReady
}

// IsAbandoned returns whether the session reached the terminal status.
func (s *Session) IsAbandoned() bool {
	return s.Status.Abandoned
}

// HasQuorum returns whether two eligible participants are present.
func (s *Session) HasQuorum() bool {
	return len(s.Participants) >= SessionQuorum
}

// RoleOf returns the role held by the given participant, if any.
func (s *Session) RoleOf(participantId string) (Role, bool) {
	role, ok := s.RolesBy[participantId]
	return role, ok
}

// HolderOf returns the participant holding the given role, if any.
func (s *Session) HolderOf(role Role) (string, bool) {
	holder, ok := s.Roles[role]
	return holder, ok
}

// Age returns the time elapsed since the session was created.
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(time.Unix(s.CreatedAt, 0))
}

func (s *Session) isParticipant(participantId string) bool {
	for _, id := range s.Participants {
		if id == participantId {
			return true
		}
	}
	return false
}

func (s *Session) isObserver(participantId string) bool {
	for _, id := range s.Observers {
		if id == participantId {
			return true
		}
	}
	return false
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().Unix()
}
