package keymap

import (
	"math"

	"github.com/rook-computer/flightdeck/internal/sim"
)

// Offline is the label of a readout whose variable the simulator does not
// report, e.g. a radio without power.
const Offline = "OFF"

// Face is what a rule decides for one key: a display name, an icon stem
// (file name without extension) and a label.
type Face struct {
	Name  string
	Icon  string
	Label string
}

// Rule turns telemetry into a Face. Rules only read telemetry.
type Rule interface {
	Face(t sim.Telemetry, pressed bool) Face
}

// Toggle shows <Name>_on or <Name>_off for a two-state variable.
// Values strictly above 0.5 count as on; absent values count as 0.
type Toggle struct {
	Variable string
	Name     string
}

func (r Toggle) Face(t sim.Telemetry, pressed bool) Face {
	return Face{Name: r.Name, Icon: iconState(r.Name, IsOn(sim.ValueOr(t, r.Variable, 0)))}
}

// IsOn is the threshold used for two-state variables.
func IsOn(value float64) bool {
	return value > 0.5
}

// Readout shows a fixed icon with a formatted value, or Offline when the
// simulator has no value.
type Readout struct {
	Variable string
	Name     string
	Icon     string
	Format   func(float64) string
}

func (r Readout) Face(t sim.Telemetry, pressed bool) Face {
	label := Offline
	if value, ok := t.Get(r.Variable); ok {
		label = r.Format(value)
	}
	return Face{Name: r.Name, Icon: r.Icon, Label: label}
}

// Composite pairs an autopilot mode with its target value. The mode counts
// as engaged at 1.0 and above. With a non-zero DeadBand the label collapses
// to a single space while |target| < DeadBand.
type Composite struct {
	Variable string
	Target   string
	Name     string
	DeadBand float64
	Format   func(float64) string
}

func (r Composite) Face(t sim.Telemetry, pressed bool) Face {
	engaged := sim.ValueOr(t, r.Variable, 0) >= 1.0
	target := sim.ValueOr(t, r.Target, 0)

	label := r.Format(target)
	if r.DeadBand > 0 && math.Abs(target) < r.DeadBand {
		label = " "
	}
	return Face{Name: r.Name, Icon: iconState(r.Name, engaged), Label: label}
}

// Exit is the face of the reserved last key.
type Exit struct{}

func (Exit) Face(t sim.Telemetry, pressed bool) Face {
	label := "Exit"
	if pressed {
		label = "Bye"
	}
	return Face{Name: ExitName, Icon: "Exit", Label: label}
}

// Empty is the face of keys without a binding; the icon follows the key.
type Empty struct{}

func (Empty) Face(t sim.Telemetry, pressed bool) Face {
	icon := "Released"
	if pressed {
		icon = "Pressed"
	}
	return Face{Name: EmptyName, Icon: icon}
}

func iconState(name string, on bool) string {
	if on {
		return name + "_on"
	}
	return name + "_off"
}
