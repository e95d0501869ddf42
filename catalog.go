package union

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog maps widget names used in page documents to their Binders.
type Catalog struct {
	mu      sync.RWMutex
	binders map[string]*Binder
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{binders: make(map[string]*Binder)}
}

// Register adds a widget. Names must be unique.
func (c *Catalog) Register(name string, binder *Binder) error {
	if name == "" || binder == nil {
		return fmt.Errorf("%w: widget needs a name and a binder", ErrInvalidDescriptor)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.binders[name]; ok {
		return fmt.Errorf("%w: %s", ErrWidgetExists, name)
	}
	c.binders[name] = binder
	return nil
}

// Lookup returns the Binder registered under name.
func (c *Catalog) Lookup(name string) (*Binder, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.binders[name]
	return b, ok
}

// Names returns the registered widget names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.binders))
	for name := range c.binders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
