package domain

import "context"

// SessionRepository is the abstraction for any kind of database intended to
// persist Sessions. UpdateSession is the only way to mutate a stored
// session: implementations must apply the closure to the current record and
// persist the result so that no other update on the same id interleaves.
type SessionRepository interface {
	// AddSession persists a new session keyed by its venue id. It returns
	// ErrSessionAlreadyExists if the id is taken.
	AddSession(ctx context.Context, session *Session) error
	// GetSession returns the session with the given venue id, or
	// ErrSessionNotFound.
	GetSession(ctx context.Context, id string) (*Session, error)
	// GetAllSessions returns every stored session.
	GetAllSessions(ctx context.Context) ([]*Session, error)
	// GetSessionsAwaitingQuorum returns the sessions still below quorum,
	// used by the abandonment sweeper.
	GetSessionsAwaitingQuorum(ctx context.Context) ([]*Session, error)
	// UpdateSession commits the changes made by updateFn to the session
	// with the given id in a transactional way. If updateFn returns an
	// error nothing is persisted and the error is propagated as is.
	UpdateSession(
		ctx context.Context,
		id string,
		updateFn func(s *Session) (*Session, error),
	) error
}
