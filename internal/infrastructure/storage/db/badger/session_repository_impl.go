package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/escrow-network/escrow-daemon/internal/core/domain"
)

type sessionRepositoryImpl struct {
	store *badgerhold.Store
}

func newSessionRepositoryImpl(store *badgerhold.Store) domain.SessionRepository {
	return sessionRepositoryImpl{store}
}

func (r sessionRepositoryImpl) AddSession(
	ctx context.Context, session *domain.Session,
) error {
	if err := r.store.Insert(session.Id, session); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrSessionAlreadyExists
		}
		return err
	}
	return nil
}

func (r sessionRepositoryImpl) GetSession(
	ctx context.Context, id string,
) (*domain.Session, error) {
	var session domain.Session
	if err := r.store.Get(id, &session); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r sessionRepositoryImpl) GetAllSessions(
	ctx context.Context,
) ([]*domain.Session, error) {
	var sessions []domain.Session
	if err := r.store.Find(&sessions, nil); err != nil {
		return nil, err
	}

	list := make([]*domain.Session, 0, len(sessions))
	for i := range sessions {
		list = append(list, &sessions[i])
	}
	return list, nil
}

func (r sessionRepositoryImpl) GetSessionsAwaitingQuorum(
	ctx context.Context,
) ([]*domain.Session, error) {
	query := badgerhold.
		Where("Status.Code").Eq(domain.SessionStatusCodeAwaitingQuorum).
		And("Status.Abandoned").Eq(false)

	var sessions []domain.Session
	if err := r.store.Find(&sessions, query); err != nil {
		return nil, err
	}

	list := make([]*domain.Session, 0, len(sessions))
	for i := range sessions {
		list = append(list, &sessions[i])
	}
	return list, nil
}

// UpdateSession runs the closure inside a single badger transaction so that
// the read-modify-write commits as one unit. Badger transactions are
// serializable; a concurrent update on the same session makes the commit
// fail with ErrConflict, in which case the whole closure is retried against
// the fresh record. This is what makes updates linearizable per key.
func (r sessionRepositoryImpl) UpdateSession(
	ctx context.Context,
	id string,
	updateFn func(s *domain.Session) (*domain.Session, error),
) error {
	for {
		err := r.store.Badger().Update(func(tx *badger.Txn) error {
			var session domain.Session
			if err := r.store.TxGet(tx, id, &session); err != nil {
				if err == badgerhold.ErrNotFound {
					return domain.ErrSessionNotFound
				}
				return err
			}

			updatedSession, err := updateFn(&session)
			if err != nil {
				return err
			}

			return r.store.TxUpdate(tx, id, *updatedSession)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return err
	}
}
