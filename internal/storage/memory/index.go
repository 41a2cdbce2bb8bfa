package memory

import (
	"sync"

	"github.com/yndnr/timekeep-go/pkg/cmap"
)

// IDSet is a concurrent-safe set of IDs.
type IDSet struct {
	mu    sync.RWMutex
	items map[string]struct{}
}

// NewIDSet creates a new ID set.
func NewIDSet() *IDSet {
	return &IDSet{items: make(map[string]struct{})}
}

// Add adds an ID to the set.
func (s *IDSet) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = struct{}{}
}

// Items returns a copy of all IDs.
func (s *IDSet) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]string, 0, len(s.items))
	for id := range s.items {
		items = append(items, id)
	}
	return items
}

// OwnerIndex maps an owner (user ID) to the set of record IDs it owns.
// Records are never deleted, so sets only grow.
type OwnerIndex struct {
	index *cmap.Map[string, *IDSet]
}

// NewOwnerIndex creates a new owner index.
func NewOwnerIndex() *OwnerIndex {
	return &OwnerIndex{index: cmap.New[string, *IDSet]()}
}

// Add records that owner owns id.
func (i *OwnerIndex) Add(owner, id string) {
	var set *IDSet
	i.index.Compute(owner, func(cur *IDSet, exists bool) (*IDSet, bool) {
		if exists {
			set = cur
			return cur, false
		}
		set = NewIDSet()
		return set, true
	})
	set.Add(id)
}

// Get returns all IDs owned by owner.
func (i *OwnerIndex) Get(owner string) []string {
	set, ok := i.index.Get(owner)
	if !ok {
		return nil
	}
	return set.Items()
}

