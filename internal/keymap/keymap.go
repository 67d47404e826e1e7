// Package keymap maps simulator variables to deck keys and decides what
// each key shows.
package keymap

import (
	"fmt"
	"sort"
)

const (
	ExitName  = "exit"
	EmptyName = "EMPTY"
)

// Binding ties a simulator variable to a key slot. Event is the simulator
// event fired when the key is pressed; empty means the key only displays.
type Binding struct {
	Variable string
	Slot     int
	Rule     Rule
	Event    string
}

// Layout is an immutable set of bindings with unique variables and slots.
type Layout struct {
	bindings   []Binding
	bySlot     map[int]Binding
	byVariable map[string]int
}

func NewLayout(bindings ...Binding) (*Layout, error) {
	layout := &Layout{
		bySlot:     make(map[int]Binding, len(bindings)),
		byVariable: make(map[string]int, len(bindings)),
	}
	for _, b := range bindings {
		if b.Variable == "" {
			return nil, fmt.Errorf("binding for slot %d has no variable", b.Slot)
		}
		if b.Rule == nil {
			return nil, fmt.Errorf("binding %s has no rule", b.Variable)
		}
		if b.Slot < 0 {
			return nil, fmt.Errorf("binding %s has negative slot %d", b.Variable, b.Slot)
		}
		if other, dup := layout.bySlot[b.Slot]; dup {
			return nil, fmt.Errorf("slot %d bound twice (%s, %s)", b.Slot, other.Variable, b.Variable)
		}
		if _, dup := layout.byVariable[b.Variable]; dup {
			return nil, fmt.Errorf("variable %s bound twice", b.Variable)
		}
		layout.bySlot[b.Slot] = b
		layout.byVariable[b.Variable] = b.Slot
		layout.bindings = append(layout.bindings, b)
	}
	sort.Slice(layout.bindings, func(i, j int) bool { return layout.bindings[i].Slot < layout.bindings[j].Slot })
	return layout, nil
}

// Bindings returns the bindings ordered by slot.
func (l *Layout) Bindings() []Binding {
	out := make([]Binding, len(l.bindings))
	copy(out, l.bindings)
	return out
}

// Binding returns the binding on slot.
func (l *Layout) Binding(slot int) (Binding, bool) {
	if l == nil {
		return Binding{}, false
	}
	b, ok := l.bySlot[slot]
	return b, ok
}

// Event returns the simulator event for a press on slot. A nil layout binds
// nothing.
func (l *Layout) Event(slot int) (string, bool) {
	if l == nil {
		return "", false
	}
	b, ok := l.bySlot[slot]
	if !ok || b.Event == "" {
		return "", false
	}
	return b.Event, true
}

// Validate checks that every slot exists on a deck with keyCount keys and
// that the last key stays free for the exit control.
func (l *Layout) Validate(keyCount int) error {
	if keyCount < 1 {
		return fmt.Errorf("deck has no keys")
	}
	for _, b := range l.bindings {
		if b.Slot >= keyCount-1 {
			return fmt.Errorf("%s is bound to slot %d but a %d-key deck only has slots 0..%d (last is exit)", b.Variable, b.Slot, keyCount, keyCount-2)
		}
	}
	return nil
}

// Fit returns the layout restricted to what a keyCount-key deck can show,
// together with the bindings that did not fit.
func (l *Layout) Fit(keyCount int) (*Layout, []Binding) {
	var kept, dropped []Binding
	for _, b := range l.bindings {
		if b.Slot < keyCount-1 {
			kept = append(kept, b)
		} else {
			dropped = append(dropped, b)
		}
	}
	fitted, err := NewLayout(kept...)
	if err != nil {
		// kept is a subset of a valid layout
		panic(err)
	}
	return fitted, dropped
}

var defaultLayout = mustLayout(
	Binding{Variable: "AUTOPILOT_MASTER", Slot: 0, Rule: Toggle{Variable: "AUTOPILOT_MASTER", Name: "AP"}, Event: "AP_MASTER"},
	Binding{Variable: "AUTOPILOT_NAV1_LOCK", Slot: 1, Rule: Toggle{Variable: "AUTOPILOT_NAV1_LOCK", Name: "NAV"}, Event: "AP_NAV1_HOLD_ON"},
	Binding{Variable: "AUTOPILOT_HEADING_LOCK", Slot: 2, Rule: Composite{Variable: "AUTOPILOT_HEADING_LOCK", Target: "AUTOPILOT_HEADING_LOCK_DIR", Name: "HDG", Format: FormatHeading}, Event: "AP_HDG_HOLD_ON"},
	Binding{Variable: "AUTOPILOT_ALTITUDE_LOCK", Slot: 3, Rule: Composite{Variable: "AUTOPILOT_ALTITUDE_LOCK", Target: "AUTOPILOT_ALTITUDE_LOCK_VAR", Name: "ALT", Format: FormatAltitude}, Event: "AP_PANEL_ALTITUDE_HOLD"},
	Binding{Variable: "AUTOPILOT_VERTICAL_HOLD", Slot: 4, Rule: Composite{Variable: "AUTOPILOT_VERTICAL_HOLD", Target: "AUTOPILOT_VERTICAL_HOLD_VAR", Name: "VS", DeadBand: 5, Format: FormatVerticalSpeed}, Event: "AP_VS_HOLD"},
	Binding{Variable: "AUTOPILOT_APPROACH_HOLD", Slot: 5, Rule: Toggle{Variable: "AUTOPILOT_APPROACH_HOLD", Name: "APPR"}, Event: "AP_APR_HOLD"},
	Binding{Variable: "AUTOPILOT_YAW_DAMPER", Slot: 6, Rule: Toggle{Variable: "AUTOPILOT_YAW_DAMPER", Name: "YD"}, Event: "YAW_DAMPER_TOGGLE"},
	Binding{Variable: "LIGHT_LANDING", Slot: 7, Rule: Toggle{Variable: "LIGHT_LANDING", Name: "Land"}, Event: "LANDING_LIGHTS_TOGGLE"},
	Binding{Variable: "NAV_ACTIVE_FREQUENCY:1", Slot: 11, Rule: Readout{Variable: "NAV_ACTIVE_FREQUENCY:1", Name: "NAV1", Icon: "NAV1", Format: FormatFrequency}, Event: "NAV1_RADIO_SWAP"},
	Binding{Variable: "COM_ACTIVE_FREQUENCY:1", Slot: 12, Rule: Readout{Variable: "COM_ACTIVE_FREQUENCY:1", Name: "COM1", Icon: "COM", Format: FormatFrequency}, Event: "COM_STBY_RADIO_SWAP"},
	Binding{Variable: "GPS_ETE", Slot: 13, Rule: Readout{Variable: "GPS_ETE", Name: "ETE", Icon: "ETE", Format: FormatETE}},
)

// Default returns the built-in autopilot layout for a 15-key deck.
func Default() *Layout {
	return defaultLayout
}

func mustLayout(bindings ...Binding) *Layout {
	layout, err := NewLayout(bindings...)
	if err != nil {
		panic(err)
	}
	return layout
}
