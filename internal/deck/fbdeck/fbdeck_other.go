//go:build !linux

package fbdeck

import (
	"github.com/pkg/errors"

	"github.com/rook-computer/flightdeck/internal/deck"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type Options struct {
	Device    string
	Keyboard  string
	Columns   int
	Rows      int
	StatusURL string
	Logger    Logger
}

func Enumerate(opts Options) ([]deck.Device, error) {
	return nil, errors.New("framebuffer deck requires linux")
}
