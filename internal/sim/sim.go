// Package sim talks to the flight simulator: it reads telemetry variables
// and triggers named events.
package sim

import "errors"

var (
	ErrUnknownEvent    = errors.New("unknown simulator event")
	ErrUnknownVariable = errors.New("unknown simulator variable")
)

// Event fires a parameterless simulator action.
type Event func() error

// Telemetry reads simulator variables on demand. ok is false when the
// simulator has no value for name.
type Telemetry interface {
	Get(name string) (value float64, ok bool)
}

// Client is the shared simulator connection. Implementations must be safe
// for concurrent use by several decks.
type Client interface {
	Telemetry
	Find(event string) (Event, error)
}

// ValueOr reads name and falls back to def when the simulator has no value.
func ValueOr(t Telemetry, name string, def float64) float64 {
	if t == nil {
		return def
	}
	if value, ok := t.Get(name); ok {
		return value
	}
	return def
}

// Trigger looks up event on c and fires it once.
func Trigger(c Client, event string) error {
	fire, err := c.Find(event)
	if err != nil {
		return err
	}
	return fire()
}
