package domain

import "errors"

var (
	// ErrSessionNotFound is returned when looking up a session that was
	// never persisted.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAlreadyExists is returned when inserting a session whose
	// venue id is already taken.
	ErrSessionAlreadyExists = errors.New("session already exists")
	// ErrSessionAbandoned is returned for any operation on a session that
	// reached the terminal Abandoned state.
	ErrSessionAbandoned = errors.New("session is abandoned")

	// ErrParticipantNotEligible is returned when a role claim comes from an
	// account that is not one of the two counted participants, or before
	// quorum is reached.
	ErrParticipantNotEligible = errors.New("participant is not eligible for a role")
	// ErrRoleAlreadyChosen is returned when a participant who already holds
	// a role claims again. Role choice is one-shot and irrevocable.
	ErrRoleAlreadyChosen = errors.New("participant already chose a role")
	// ErrRoleTaken is returned when the requested role is held by the other
	// participant.
	ErrRoleTaken = errors.New("role is already taken")
	// ErrInvalidRole is returned for a role outside {buyer, seller}.
	ErrInvalidRole = errors.New("invalid role")

	// ErrNoRoleHeld is returned when an address is submitted by an account
	// that holds no role in the session.
	ErrNoRoleHeld = errors.New("participant holds no role")
	// ErrAddressAlreadySubmitted is returned on a second address submission
	// for the same role. Submission is one-shot like role choice.
	ErrAddressAlreadySubmitted = errors.New("settlement address already submitted")
	// ErrMalformedAddress is returned when an address fails the length
	// bounds check.
	ErrMalformedAddress = errors.New("malformed settlement address")
)
