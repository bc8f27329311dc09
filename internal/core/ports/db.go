package ports

import (
	"github.com/escrow-network/escrow-daemon/internal/core/domain"
)

// RepoManager groups the repositories backed by the same store.
type RepoManager interface {
	SessionRepository() domain.SessionRepository
	CounterRepository() domain.CounterRepository

	Close()
}
