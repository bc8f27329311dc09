package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"

	"github.com/escrow-network/escrow-daemon/internal/core/domain"
)

type counterRepositoryImpl struct {
	store *badgerhold.Store
}

func newCounterRepositoryImpl(store *badgerhold.Store) domain.CounterRepository {
	return counterRepositoryImpl{store}
}

// NextSequence allocates inside one badger transaction, retried on commit
// conflict, so concurrent allocations for the same deal type never return
// the same number.
func (r counterRepositoryImpl) NextSequence(
	ctx context.Context, dealType domain.DealType,
) (uint64, error) {
	var seqNum uint64

	for {
		err := r.store.Badger().Update(func(tx *badger.Txn) error {
			var counter domain.DealCounter
			err := r.store.TxGet(tx, counterKey(dealType), &counter)
			if err != nil {
				if err != badgerhold.ErrNotFound {
					return err
				}
				counter = *domain.NewDealCounter(dealType)
				seqNum = counter.Allocate()
				return r.store.TxInsert(tx, counterKey(dealType), &counter)
			}

			seqNum = counter.Allocate()
			return r.store.TxUpdate(tx, counterKey(dealType), counter)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return seqNum, nil
	}
}

func (r counterRepositoryImpl) ReleaseSequence(
	ctx context.Context, dealType domain.DealType, seqNum uint64,
) error {
	for {
		err := r.store.Badger().Update(func(tx *badger.Txn) error {
			var counter domain.DealCounter
			if err := r.store.TxGet(tx, counterKey(dealType), &counter); err != nil {
				if err == badgerhold.ErrNotFound {
					return nil
				}
				return err
			}

			if !counter.Release(seqNum) {
				return nil
			}
			return r.store.TxUpdate(tx, counterKey(dealType), counter)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		return err
	}
}

func (r counterRepositoryImpl) GetCounter(
	ctx context.Context, dealType domain.DealType,
) (*domain.DealCounter, error) {
	var counter domain.DealCounter
	if err := r.store.Get(counterKey(dealType), &counter); err != nil {
		if err == badgerhold.ErrNotFound {
			return domain.NewDealCounter(dealType), nil
		}
		return nil, err
	}
	return &counter, nil
}

func counterKey(dealType domain.DealType) string {
	return dealType.String()
}
