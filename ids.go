package alloy

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out node ids. Ids must be unique for the lifetime of the
// trees built by one Builder.
type IDGenerator interface {
	NextID() string
}

// CounterIDs is a per-builder sequence ("node-1", "node-2", ...).
type CounterIDs struct {
	prefix string
	n      atomic.Uint64
}

// NewCounterIDs returns a counter generator; an empty prefix means "node".
func NewCounterIDs(prefix string) *CounterIDs {
	if prefix == "" {
		prefix = "node"
	}
	return &CounterIDs{prefix: prefix}
}

func (c *CounterIDs) NextID() string {
	return c.prefix + "-" + strconv.FormatUint(c.n.Add(1), 10)
}

// UUIDs generates random UUIDv4 ids, for trees whose nodes are referenced
// across processes.
type UUIDs struct{}

func (UUIDs) NextID() string { return uuid.NewString() }
