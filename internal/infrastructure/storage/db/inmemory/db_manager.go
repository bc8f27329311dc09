package inmemory

import (
	"github.com/escrow-network/escrow-daemon/internal/core/domain"
	"github.com/escrow-network/escrow-daemon/internal/core/ports"
)

type RepoManager struct {
	sessionRepository domain.SessionRepository
	counterRepository domain.CounterRepository
}

// NewRepoManager returns an in-memory RepoManager, mainly useful in tests.
func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		sessionRepository: NewSessionRepositoryImpl(),
		counterRepository: NewCounterRepositoryImpl(),
	}
}

func (d *RepoManager) SessionRepository() domain.SessionRepository {
	return d.sessionRepository
}

func (d *RepoManager) CounterRepository() domain.CounterRepository {
	return d.counterRepository
}

func (d *RepoManager) Close() {}
