package domain

// DealCounter is the persisted cursor handing out human-readable sequence
// numbers per deal type. Next is the number the upcoming allocation will
// return; the first venue of a deal type is number 1.
type DealCounter struct {
	DealType DealType
	Next     uint64
}

// NewDealCounter returns a counter positioned on the first number.
func NewDealCounter(dealType DealType) *DealCounter {
	return &DealCounter{DealType: dealType, Next: 1}
}

// Allocate returns the current number and moves the cursor forward. Numbers
// are never reissued; callers that fail after allocating simply burn the
// number, gaps are acceptable.
func (c *DealCounter) Allocate() uint64 {
	n := c.Next
	c.Next++
	return n
}

// Release rolls the cursor back over seqNum, but only if it was the most
// recent allocation. Anything older stays burned.
func (c *DealCounter) Release(seqNum uint64) bool {
	if c.Next != seqNum+1 {
		return false
	}
	c.Next = seqNum
	return true
}
