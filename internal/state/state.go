package state

import (
	"sort"
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of simulator variables.
// A variable missing from the map is unknown to the simulator.
type Snapshot struct {
	Values  map[string]float64
	Updated time.Time
}

// Get returns the value for name and whether the simulator reported it.
func (snap Snapshot) Get(name string) (float64, bool) {
	value, ok := snap.Values[name]
	return value, ok
}

// Names returns the known variable names in sorted order.
func (snap Snapshot) Names() []string {
	names := make([]string, 0, len(snap.Values))
	for name := range snap.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Store struct {
	mu      sync.RWMutex
	values  map[string]float64
	updated time.Time
}

func NewStore() *Store {
	return &Store{values: make(map[string]float64)}
}

func (store *Store) Snapshot() Snapshot {
	store.mu.RLock()
	defer store.mu.RUnlock()

	values := make(map[string]float64, len(store.values))
	for name, value := range store.values {
		values[name] = value
	}
	return Snapshot{Values: values, Updated: store.updated}
}

func (store *Store) Get(name string) (float64, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	value, ok := store.values[name]
	return value, ok
}

func (store *Store) Set(name string, value float64) {
	store.mu.Lock()
	store.values[name] = value
	store.updated = time.Now()
	store.mu.Unlock()
}

// Unset forgets name so later reads report it as unknown.
func (store *Store) Unset(name string) {
	store.mu.Lock()
	delete(store.values, name)
	store.updated = time.Now()
	store.mu.Unlock()
}

// Update applies fn to the live values while holding the write lock.
// Multi-variable events (radio swaps, hold modes) use it to stay atomic.
func (store *Store) Update(fn func(values map[string]float64)) {
	store.mu.Lock()
	fn(store.values)
	store.updated = time.Now()
	store.mu.Unlock()
}

// Replace swaps in a fresh set of values, e.g. when a scenario is loaded.
func (store *Store) Replace(values map[string]float64) {
	fresh := make(map[string]float64, len(values))
	for name, value := range values {
		fresh[name] = value
	}
	store.mu.Lock()
	store.values = fresh
	store.updated = time.Now()
	store.mu.Unlock()
}
