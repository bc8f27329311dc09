package domain

import "context"

// CounterRepository is the abstraction for persisting per-deal-type
// sequence counters. The counter is the only record shared across
// sessions, so allocations must go through the same atomic-mutation
// discipline as session updates.
type CounterRepository interface {
	// NextSequence atomically allocates the next sequence number for the
	// given deal type, creating the counter on first use. Concurrent calls
	// for the same deal type never return the same number.
	NextSequence(ctx context.Context, dealType DealType) (uint64, error)
	// ReleaseSequence gives back a just-allocated number after a failed
	// venue creation. The release is best-effort: it only applies if no
	// other allocation happened in between, otherwise the number stays
	// burned and the sequence keeps a gap.
	ReleaseSequence(ctx context.Context, dealType DealType, seqNum uint64) error
	// GetCounter returns the current counter for the given deal type, or a
	// fresh one if no allocation happened yet.
	GetCounter(ctx context.Context, dealType DealType) (*DealCounter, error)
}
