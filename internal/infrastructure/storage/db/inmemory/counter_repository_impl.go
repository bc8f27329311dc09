package inmemory

import (
	"context"
	"sync"

	"github.com/escrow-network/escrow-daemon/internal/core/domain"
)

type counterRepositoryImpl struct {
	counters map[domain.DealType]*domain.DealCounter
	locker   *sync.Mutex
}

// NewCounterRepositoryImpl returns a new inmemory CounterRepository
// implementation.
func NewCounterRepositoryImpl() domain.CounterRepository {
	return &counterRepositoryImpl{
		counters: map[domain.DealType]*domain.DealCounter{},
		locker:   &sync.Mutex{},
	}
}

func (r *counterRepositoryImpl) NextSequence(
	_ context.Context, dealType domain.DealType,
) (uint64, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	counter, ok := r.counters[dealType]
	if !ok {
		counter = domain.NewDealCounter(dealType)
		r.counters[dealType] = counter
	}
	return counter.Allocate(), nil
}

func (r *counterRepositoryImpl) ReleaseSequence(
	_ context.Context, dealType domain.DealType, seqNum uint64,
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if counter, ok := r.counters[dealType]; ok {
		counter.Release(seqNum)
	}
	return nil
}

func (r *counterRepositoryImpl) GetCounter(
	_ context.Context, dealType domain.DealType,
) (*domain.DealCounter, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	counter, ok := r.counters[dealType]
	if !ok {
		return domain.NewDealCounter(dealType), nil
	}
	counterCopy := *counter
	return &counterCopy, nil
}
