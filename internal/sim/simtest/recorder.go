// Package simtest provides a recording simulator client for tests.
package simtest

import (
	"fmt"
	"sync"

	"github.com/rook-computer/flightdeck/internal/sim"
)

// Recorder answers reads from Values and records every fired event.
// Events listed in Known are accepted; a nil Known accepts everything.
type Recorder struct {
	mu     sync.Mutex
	values map[string]float64
	known  map[string]bool
	fired  []string
	reads  int
}

func NewRecorder(values map[string]float64, known ...string) *Recorder {
	r := &Recorder{values: make(map[string]float64)}
	for name, value := range values {
		r.values[name] = value
	}
	if len(known) > 0 {
		r.known = make(map[string]bool, len(known))
		for _, name := range known {
			r.known[name] = true
		}
	}
	return r
}

func (r *Recorder) Set(name string, value float64) {
	r.mu.Lock()
	r.values[name] = value
	r.mu.Unlock()
}

func (r *Recorder) Unset(name string) {
	r.mu.Lock()
	delete(r.values, name)
	r.mu.Unlock()
}

func (r *Recorder) Get(name string) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	value, ok := r.values[name]
	return value, ok
}

func (r *Recorder) Find(event string) (sim.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.known != nil && !r.known[event] {
		return nil, fmt.Errorf("%w: %s", sim.ErrUnknownEvent, event)
	}
	return func() error {
		r.mu.Lock()
		r.fired = append(r.fired, event)
		r.mu.Unlock()
		return nil
	}, nil
}

// Fired returns a copy of the events fired so far, in order.
func (r *Recorder) Fired() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.fired))
	copy(out, r.fired)
	return out
}

// Count returns how often event was fired.
func (r *Recorder) Count(event string) int {
	n := 0
	for _, fired := range r.Fired() {
		if fired == event {
			n++
		}
	}
	return n
}

// Reads returns the number of Get calls served.
func (r *Recorder) Reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}
