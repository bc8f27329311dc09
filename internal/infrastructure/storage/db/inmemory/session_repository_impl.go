package inmemory

import (
	"context"
	"sync"

	"github.com/escrow-network/escrow-daemon/internal/core/domain"
)

type sessionInmemoryStore struct {
	sessions map[string]domain.Session
	locker   *sync.Mutex
}

type sessionRepositoryImpl struct {
	store *sessionInmemoryStore
}

// NewSessionRepositoryImpl returns a new inmemory SessionRepository
// implementation.
func NewSessionRepositoryImpl() domain.SessionRepository {
	return &sessionRepositoryImpl{
		store: &sessionInmemoryStore{
			sessions: map[string]domain.Session{},
			locker:   &sync.Mutex{},
		},
	}
}

func (r *sessionRepositoryImpl) AddSession(
	_ context.Context, session *domain.Session,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.sessions[session.Id]; ok {
		return domain.ErrSessionAlreadyExists
	}
	r.store.sessions[session.Id] = *copySession(session)
	return nil
}

func (r *sessionRepositoryImpl) GetSession(
	_ context.Context, id string,
) (*domain.Session, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	session, ok := r.store.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return copySession(&session), nil
}

func (r *sessionRepositoryImpl) GetAllSessions(
	_ context.Context,
) ([]*domain.Session, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	sessions := make([]*domain.Session, 0, len(r.store.sessions))
	for i := range r.store.sessions {
		session := r.store.sessions[i]
		sessions = append(sessions, copySession(&session))
	}
	return sessions, nil
}

func (r *sessionRepositoryImpl) GetSessionsAwaitingQuorum(
	_ context.Context,
) ([]*domain.Session, error) {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	sessions := make([]*domain.Session, 0)
	for i := range r.store.sessions {
		session := r.store.sessions[i]
		if session.IsAwaitingQuorum() {
			sessions = append(sessions, copySession(&session))
		}
	}
	return sessions, nil
}

func (r *sessionRepositoryImpl) UpdateSession(
	_ context.Context,
	id string,
	updateFn func(s *domain.Session) (*domain.Session, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	currentSession, ok := r.store.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}

	updatedSession, err := updateFn(copySession(&currentSession))
	if err != nil {
		return err
	}

	r.store.sessions[id] = *copySession(updatedSession)
	return nil
}

// copySession returns a deep copy so that callers never alias the maps and
// slices of the stored record.
func copySession(s *domain.Session) *domain.Session {
	session := *s
	session.Participants = append([]string(nil), s.Participants...)
	session.Observers = append([]string(nil), s.Observers...)
	session.Roles = make(map[domain.Role]string, len(s.Roles))
	for k, v := range s.Roles {
		session.Roles[k] = v
	}
	session.RolesBy = make(map[string]domain.Role, len(s.RolesBy))
	for k, v := range s.RolesBy {
		session.RolesBy[k] = v
	}
	session.Settlements = make(map[domain.Role]domain.Settlement, len(s.Settlements))
	for k, v := range s.Settlements {
		session.Settlements[k] = v
	}
	return &session
}
