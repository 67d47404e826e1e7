package buttons

import "sync"

// Event is one key edge.
type Event struct {
	Key     int
	Pressed bool
}

// Tracker turns level key-state reports into edges. Reports repeating the
// previous state produce nothing.
type Tracker struct {
	mu     sync.Mutex
	states []bool
}

func NewTracker(keyCount int) *Tracker {
	return &Tracker{states: make([]bool, keyCount)}
}

// Update takes the full state of every key and returns the keys that changed.
// Extra entries beyond the tracked key count are ignored.
func (t *Tracker) Update(states []bool) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	var events []Event
	for key := range t.states {
		pressed := key < len(states) && states[key]
		if pressed != t.states[key] {
			t.states[key] = pressed
			events = append(events, Event{Key: key, Pressed: pressed})
		}
	}
	return events
}

// Set records a single key edge, returning false when it repeats the
// current state.
func (t *Tracker) Set(key int, pressed bool) (Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if key < 0 || key >= len(t.states) || t.states[key] == pressed {
		return Event{}, false
	}
	t.states[key] = pressed
	return Event{Key: key, Pressed: pressed}, true
}

// Reset marks every key released without emitting events.
func (t *Tracker) Reset() {
	t.mu.Lock()
	for i := range t.states {
		t.states[i] = false
	}
	t.mu.Unlock()
}
