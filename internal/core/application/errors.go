package application

import "fmt"

var (
	// ErrServiceUnavailable is returned whenever the record store could not
	// commit a mutation. No outbound action has been emitted and the
	// inbound event can be safely retried.
	ErrServiceUnavailable = fmt.Errorf("service is unavailable, retry later")
	// ErrVenueCreationFailed is returned when the platform could not create
	// the group for a new deal. No session record is persisted in that case.
	ErrVenueCreationFailed = fmt.Errorf("could not create venue, retry later")
	// ErrSessionNotFound ...
	ErrSessionNotFound = fmt.Errorf("session not found")
	// ErrUnknownCommand ...
	ErrUnknownCommand = fmt.Errorf("unknown command")
	// ErrUnknownAction ...
	ErrUnknownAction = fmt.Errorf("unknown button action")
	// ErrInvalidArgs ...
	ErrInvalidArgs = fmt.Errorf("invalid command arguments")
)
