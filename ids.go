package union

import "sync/atomic"

// IDGenerator hands out mount ids. Implementations must be safe for
// concurrent use and must never return the same id twice.
type IDGenerator interface {
	Next() uint64
}

// Counter is a monotonic IDGenerator. The zero value is ready to use and
// starts at 1.
type Counter struct {
	n atomic.Uint64
}

// Next returns the next id.
func (c *Counter) Next() uint64 {
	return c.n.Add(1)
}

// mountIDs is shared by every Binder that was not given its own generator,
// so ids stay unique across all widgets of a process.
var mountIDs IDGenerator = &Counter{}
