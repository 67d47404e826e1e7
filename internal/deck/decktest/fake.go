// Package decktest provides an in-memory deck that records every call.
package decktest

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rook-computer/flightdeck/internal/deck"
)

// Upload is one recorded SetKeyImage call.
type Upload struct {
	Key  int
	Data []byte
}

// Device is a fake deck. Overlapping transport calls are counted in
// Overlaps; UploadDelay widens the window in which they can occur.
type Device struct {
	Name        string
	Keys        int
	Format      deck.ImageFormat
	UploadDelay time.Duration

	inFlight atomic.Int32
	overlaps atomic.Int32

	mu          sync.Mutex
	open        bool
	closed      bool
	failUploads bool
	resets      int
	brightness  int
	uploads     []Upload
	calls       []string
	callback    deck.KeyCallback
}

func New(keys int) *Device {
	return &Device{
		Name:   "Fake Deck",
		Keys:   keys,
		Format: deck.ImageFormat{Size: image.Pt(72, 72), Encoding: deck.Raw},
	}
}

func (d *Device) ID() string       { return "fake:" + d.Name }
func (d *Device) DeckType() string { return d.Name }

func (d *Device) Serial() (string, error) { return "FAKE0001", nil }

func (d *Device) Open() error {
	return d.transport("open", func() error {
		d.open = true
		d.closed = false
		return nil
	})
}

func (d *Device) Close() error {
	return d.transport("close", func() error {
		d.open = false
		d.closed = true
		return nil
	})
}

func (d *Device) Reset() error {
	return d.transport("reset", func() error {
		d.resets++
		return nil
	})
}

func (d *Device) SetBrightness(percent int) error {
	return d.transport("brightness", func() error {
		d.brightness = percent
		return nil
	})
}

func (d *Device) KeyCount() int               { return d.Keys }
func (d *Device) KeyFormat() deck.ImageFormat { return d.Format }

func (d *Device) SetKeyImage(key int, data []byte) error {
	if err := deck.CheckKey(d, key); err != nil {
		return err
	}
	return d.transport(fmt.Sprintf("image %d", key), func() error {
		if d.failUploads {
			return deck.Transport("write", fmt.Errorf("device unplugged"))
		}
		d.uploads = append(d.uploads, Upload{Key: key, Data: append([]byte(nil), data...)})
		return nil
	})
}

func (d *Device) SetKeyCallback(fn deck.KeyCallback) {
	d.mu.Lock()
	d.callback = fn
	d.mu.Unlock()
}

// FailUploads makes every later SetKeyImage fail with a transport error.
func (d *Device) FailUploads(fail bool) {
	d.mu.Lock()
	d.failUploads = fail
	d.mu.Unlock()
}

// Press delivers a press edge followed by a release edge for key, the way
// the transport reports a tap.
func (d *Device) Press(key int) {
	d.Edge(key, true)
	d.Edge(key, false)
}

// Edge delivers a single key edge to the registered callback.
func (d *Device) Edge(key int, pressed bool) {
	d.mu.Lock()
	fn := d.callback
	d.mu.Unlock()
	if fn != nil {
		fn(d, key, pressed)
	}
}

func (d *Device) transport(name string, fn func() error) error {
	if d.inFlight.Add(1) > 1 {
		d.overlaps.Add(1)
	}
	defer d.inFlight.Add(-1)

	if d.UploadDelay > 0 {
		time.Sleep(d.UploadDelay)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed && name != "open" {
		return deck.Transport(name, deck.ErrClosed)
	}
	d.calls = append(d.calls, name)
	return fn()
}

// Overlaps is the number of transport calls that started while another was
// still running.
func (d *Device) Overlaps() int { return int(d.overlaps.Load()) }

func (d *Device) Uploads() []Upload {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Upload(nil), d.uploads...)
}

// UploadsFor returns the uploads to key.
func (d *Device) UploadsFor(key int) []Upload {
	var out []Upload
	for _, u := range d.Uploads() {
		if u.Key == key {
			out = append(out, u)
		}
	}
	return out
}

// Calls lists the transport operations in order.
func (d *Device) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *Device) Resets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resets
}

func (d *Device) Brightness() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.brightness
}

func (d *Device) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}
