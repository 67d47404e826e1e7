// Package deck defines the transport every key deck backend implements.
package deck

import (
	"fmt"
	"image"

	"github.com/pkg/errors"
)

var (
	ErrNoDevices  = errors.New("no devices found")
	ErrInvalidKey = errors.New("invalid key")
	ErrClosed     = errors.New("device closed")
)

// KeyCallback is invoked by the transport on every key edge.
type KeyCallback func(d Device, key int, pressed bool)

// Device is one key deck. Keys are zero-based, left-to-right,
// top-to-bottom. Implementations are not required to be safe for
// concurrent use; callers serialize access per device.
type Device interface {
	ID() string
	DeckType() string
	Serial() (string, error)

	Open() error
	Close() error
	Reset() error
	SetBrightness(percent int) error

	KeyCount() int
	KeyFormat() ImageFormat
	SetKeyImage(key int, data []byte) error
	SetKeyCallback(fn KeyCallback)
}

type Encoding int

const (
	JPEG Encoding = iota
	BMP
	// Raw is the key image as an RGBA pixel buffer, row-major, 4 bytes per pixel.
	Raw
)

func (e Encoding) String() string {
	switch e {
	case JPEG:
		return "jpeg"
	case BMP:
		return "bmp"
	case Raw:
		return "raw"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// ImageFormat is how a device wants its key images. Rotation is in degrees
// clockwise and applied before the flips.
type ImageFormat struct {
	Size     image.Point
	Encoding Encoding
	FlipH    bool
	FlipV    bool
	Rotation int
}

// TransportError is a failed exchange with the device.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "deck " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Transport wraps err as a TransportError for op, keeping the cause.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: errors.WithStack(err)}
}

// CheckKey returns ErrInvalidKey when key is outside d's key range.
func CheckKey(d Device, key int) error {
	if key < 0 || key >= d.KeyCount() {
		return errors.Wrapf(ErrInvalidKey, "key %d on %d-key %s", key, d.KeyCount(), d.DeckType())
	}
	return nil
}

// Describe is the one-line summary printed when a deck is opened.
func Describe(d Device) string {
	serial, err := d.Serial()
	if err != nil {
		serial = "unknown"
	}
	return fmt.Sprintf("Opened '%s' device (serial number: '%s')", d.DeckType(), serial)
}
