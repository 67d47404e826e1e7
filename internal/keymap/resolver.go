package keymap

import (
	"path/filepath"

	"github.com/rook-computer/flightdeck/internal/sim"
)

// DefaultFont is the label font relative to the assets directory.
const DefaultFont = "Fonts/Roboto/Roboto-Regular.ttf"

// Style describes what one key should show. Icon and Font are file paths.
type Style struct {
	Name  string
	Icon  string
	Font  string
	Label string
}

// Resolver turns a key slot and live telemetry into a Style.
type Resolver struct {
	Layout    *Layout
	AssetsDir string
	Font      string
}

func NewResolver(layout *Layout, assetsDir string) *Resolver {
	return &Resolver{Layout: layout, AssetsDir: assetsDir, Font: DefaultFont}
}

// Resolve decides the style of slot on a deck with keyCount keys. The last
// slot is always the exit key. It only reads telemetry.
func (r *Resolver) Resolve(slot int, pressed bool, keyCount int, t sim.Telemetry) Style {
	return r.style(r.Rule(slot, keyCount).Face(t, pressed))
}

// Rule returns the rule in charge of slot.
func (r *Resolver) Rule(slot int, keyCount int) Rule {
	if slot == keyCount-1 {
		return Exit{}
	}
	if r.Layout != nil {
		if b, ok := r.Layout.Binding(slot); ok {
			return b.Rule
		}
	}
	return Empty{}
}

// IsExit reports whether slot is the exit key of a keyCount-key deck.
func IsExit(slot int, keyCount int) bool {
	return keyCount > 0 && slot == keyCount-1
}

func (r *Resolver) style(face Face) Style {
	font := r.Font
	if font == "" {
		font = DefaultFont
	}
	return Style{
		Name:  face.Name,
		Icon:  IconPath(r.AssetsDir, face.Icon),
		Font:  filepath.Join(r.AssetsDir, filepath.FromSlash(font)),
		Label: face.Label,
	}
}

// IconPath is where the icon stem lives under the assets directory.
func IconPath(assetsDir string, stem string) string {
	return filepath.Join(assetsDir, "Icons", stem+".png")
}
