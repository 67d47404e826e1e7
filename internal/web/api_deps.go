package web

import (
	"time"

	"github.com/rook-computer/flightdeck/internal/sim"
)

// apiLogger matches the logging shape used across flightdeck.
type apiLogger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

// EventLister is implemented by simulators that can enumerate their events.
type EventLister interface {
	Events() []string
}

type APIV1Deps struct {
	// Sim answers variable reads and fires events.
	Sim sim.Client
	// Name identifies the simulator in /status.
	Name    string
	Started time.Time
	Logger  apiLogger
	Now     func() time.Time
}

func (d APIV1Deps) withDefaults() APIV1Deps {
	out := d
	if out.Sim == nil {
		out.Sim = offlineSim{}
	}
	if out.Name == "" {
		out.Name = "unknown"
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	if out.Started.IsZero() {
		out.Started = out.Now()
	}
	if out.Logger == nil {
		out.Logger = noopLogger{}
	}
	return out
}

// offlineSim reports no telemetry and rejects every event.
type offlineSim struct{}

func (offlineSim) Get(string) (float64, bool) { return 0, false }

func (offlineSim) Find(event string) (sim.Event, error) {
	return nil, sim.ErrUnknownEvent
}
