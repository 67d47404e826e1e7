package sim

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rook-computer/flightdeck/internal/state"
)

// Scenarios holds the starting variables of the simulated aircraft.
// Variables left out of a scenario read as unknown.
var Scenarios = map[string]map[string]float64{
	"cruise": {
		"AUTOPILOT_MASTER":            1,
		"AUTOPILOT_NAV1_LOCK":         1,
		"AUTOPILOT_HEADING_LOCK":      0,
		"AUTOPILOT_HEADING_LOCK_DIR":  270,
		"AUTOPILOT_ALTITUDE_LOCK":     1,
		"AUTOPILOT_ALTITUDE_LOCK_VAR": 8500,
		"AUTOPILOT_VERTICAL_HOLD":     0,
		"AUTOPILOT_VERTICAL_HOLD_VAR": 0,
		"AUTOPILOT_APPROACH_HOLD":     0,
		"AUTOPILOT_YAW_DAMPER":        1,
		"LIGHT_LANDING":               0,
		"NAV_ACTIVE_FREQUENCY:1":      113.9,
		"NAV_STANDBY_FREQUENCY:1":     110.5,
		"COM_ACTIVE_FREQUENCY:1":      124.35,
		"COM_STBY_FREQUENCY:1":        118.25,
		"GPS_ETE":                     1820,
		"PLANE_ALTITUDE":              8500,
		"VERTICAL_SPEED":              0,
	},
	"approach": {
		"AUTOPILOT_MASTER":            1,
		"AUTOPILOT_NAV1_LOCK":         0,
		"AUTOPILOT_HEADING_LOCK":      1,
		"AUTOPILOT_HEADING_LOCK_DIR":  95,
		"AUTOPILOT_ALTITUDE_LOCK":     0,
		"AUTOPILOT_ALTITUDE_LOCK_VAR": 3000,
		"AUTOPILOT_VERTICAL_HOLD":     1,
		"AUTOPILOT_VERTICAL_HOLD_VAR": -700,
		"AUTOPILOT_APPROACH_HOLD":     1,
		"AUTOPILOT_YAW_DAMPER":        1,
		"LIGHT_LANDING":               1,
		"NAV_ACTIVE_FREQUENCY:1":      110.3,
		"NAV_STANDBY_FREQUENCY:1":     113.9,
		"COM_ACTIVE_FREQUENCY:1":      118.25,
		"COM_STBY_FREQUENCY:1":        121.9,
		"GPS_ETE":                     420,
		"PLANE_ALTITUDE":              3200,
		"VERTICAL_SPEED":              -700,
	},
	// Avionics off: radios and GPS report nothing.
	"cold-and-dark": {
		"AUTOPILOT_MASTER":        0,
		"AUTOPILOT_NAV1_LOCK":     0,
		"AUTOPILOT_HEADING_LOCK":  0,
		"AUTOPILOT_ALTITUDE_LOCK": 0,
		"AUTOPILOT_VERTICAL_HOLD": 0,
		"AUTOPILOT_APPROACH_HOLD": 0,
		"AUTOPILOT_YAW_DAMPER":    0,
		"LIGHT_LANDING":           0,
		"PLANE_ALTITUDE":          0,
		"VERTICAL_SPEED":          0,
	},
}

// ScenarioNames lists the built-in scenarios in sorted order.
func ScenarioNames() []string {
	names := make([]string, 0, len(Scenarios))
	for name := range Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aircraft is an in-memory simulated aircraft. It answers telemetry reads
// from its store and implements the events bound to the default key layout.
type Aircraft struct {
	Store  *state.Store
	events map[string]func(values map[string]float64)
}

func NewAircraft(store *state.Store) *Aircraft {
	if store == nil {
		store = state.NewStore()
	}
	a := &Aircraft{Store: store}
	a.events = map[string]func(values map[string]float64){
		"AP_MASTER":              toggle("AUTOPILOT_MASTER"),
		"AP_NAV1_HOLD_ON":        engage("AUTOPILOT_NAV1_LOCK"),
		"AP_HDG_HOLD_ON":         engage("AUTOPILOT_HEADING_LOCK"),
		"AP_APR_HOLD":            toggle("AUTOPILOT_APPROACH_HOLD"),
		"YAW_DAMPER_TOGGLE":      toggle("AUTOPILOT_YAW_DAMPER"),
		"LANDING_LIGHTS_TOGGLE":  toggle("LIGHT_LANDING"),
		"NAV1_RADIO_SWAP":        swap("NAV_ACTIVE_FREQUENCY:1", "NAV_STANDBY_FREQUENCY:1"),
		"COM_STBY_RADIO_SWAP":    swap("COM_ACTIVE_FREQUENCY:1", "COM_STBY_FREQUENCY:1"),
		"AP_PANEL_ALTITUDE_HOLD": hold("AUTOPILOT_ALTITUDE_LOCK", "AUTOPILOT_ALTITUDE_LOCK_VAR", "PLANE_ALTITUDE"),
		"AP_VS_HOLD":             hold("AUTOPILOT_VERTICAL_HOLD", "AUTOPILOT_VERTICAL_HOLD_VAR", "VERTICAL_SPEED"),
	}
	return a
}

// LoadScenario replaces all variables with the named scenario.
func (a *Aircraft) LoadScenario(name string) error {
	values, ok := Scenarios[name]
	if !ok {
		return fmt.Errorf("unknown scenario %q", name)
	}
	a.Store.Replace(values)
	return nil
}

func (a *Aircraft) Get(name string) (float64, bool) {
	return a.Store.Get(name)
}

func (a *Aircraft) Find(event string) (Event, error) {
	apply, ok := a.events[event]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}
	return func() error {
		a.Store.Update(apply)
		return nil
	}, nil
}

// Events lists the event names the aircraft understands.
func (a *Aircraft) Events() []string {
	names := make([]string, 0, len(a.events))
	for name := range a.events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Advance moves simulated time forward; the GPS ETE counts down to zero.
func (a *Aircraft) Advance(elapsed time.Duration) {
	a.Store.Update(func(values map[string]float64) {
		ete, ok := values["GPS_ETE"]
		if !ok {
			return
		}
		values["GPS_ETE"] = math.Max(0, ete-elapsed.Seconds())
	})
}

func toggle(variable string) func(map[string]float64) {
	return func(values map[string]float64) {
		if values[variable] > 0.5 {
			values[variable] = 0
		} else {
			values[variable] = 1
		}
	}
}

func engage(variable string) func(map[string]float64) {
	return func(values map[string]float64) {
		values[variable] = 1
	}
}

// swap exchanges active and standby frequencies. A radio without power
// (either side unknown) ignores the swap.
func swap(active, standby string) func(map[string]float64) {
	return func(values map[string]float64) {
		a, okA := values[active]
		s, okS := values[standby]
		if !okA || !okS {
			return
		}
		values[active], values[standby] = s, a
	}
}

// hold toggles an autopilot hold mode. Engaging captures the current
// reading of source, rounded to the nearest hundred, as the target.
func hold(mode, target, source string) func(map[string]float64) {
	return func(values map[string]float64) {
		if values[mode] >= 1 {
			values[mode] = 0
			return
		}
		values[mode] = 1
		values[target] = math.Round(values[source]/100) * 100
	}
}
