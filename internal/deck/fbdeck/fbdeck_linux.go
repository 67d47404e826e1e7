//go:build linux

package fbdeck

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"sync"

	fb "github.com/gonutz/framebuffer"
	"github.com/pkg/errors"
	"golang.org/x/image/font/basicfont"

	"github.com/rook-computer/flightdeck/internal/buttons"
	"github.com/rook-computer/flightdeck/internal/deck"
	"github.com/rook-computer/flightdeck/internal/render"
	"github.com/rook-computer/flightdeck/internal/render/layout"
	"github.com/rook-computer/flightdeck/internal/system"
)

var (
	panelColor = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF}
	textColor  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type Options struct {
	Device   string
	Keyboard string
	Columns  int
	Rows     int
	// StatusURL is shown as a QR code next to the keys.
	StatusURL string
	Logger    Logger
}

// Enumerate returns the framebuffer deck if the framebuffer device exists.
func Enumerate(opts Options) ([]deck.Device, error) {
	if opts.Device == "" {
		opts.Device = "/dev/fb0"
	}
	if _, err := os.Stat(opts.Device); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "stat %s", opts.Device)
	}
	return []deck.Device{New(opts)}, nil
}

// Deck draws keys on the framebuffer. Key images must be deck.Raw.
type Deck struct {
	opts    Options
	tracker *buttons.Tracker
	console system.Console

	mu         sync.Mutex
	dev        *fb.Device
	geometry   Geometry
	brightness int
	images     map[int]*image.RGBA
	callback   deck.KeyCallback
	cancel     context.CancelFunc
}

func New(opts Options) *Deck {
	if opts.Columns <= 0 {
		opts.Columns = 5
	}
	if opts.Rows <= 0 {
		opts.Rows = 3
	}
	keys := opts.Columns * opts.Rows
	return &Deck{
		opts:       opts,
		tracker:    buttons.NewTracker(keys),
		console:    system.Console{Logger: opts.Logger},
		brightness: 100,
		images:     make(map[int]*image.RGBA),
	}
}

func (d *Deck) ID() string              { return d.opts.Device }
func (d *Deck) DeckType() string        { return "Framebuffer Deck" }
func (d *Deck) Serial() (string, error) { return "FB-" + filepath.Base(d.opts.Device), nil }
func (d *Deck) KeyCount() int           { return d.opts.Columns * d.opts.Rows }

func (d *Deck) KeyFormat() deck.ImageFormat {
	d.mu.Lock()
	defer d.mu.Unlock()
	size := d.geometry.KeySize
	if size == 0 {
		size = 72
	}
	return deck.ImageFormat{Size: image.Pt(size, size), Encoding: deck.Raw}
}

func (d *Deck) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev != nil {
		return nil
	}
	dev, err := fb.Open(d.opts.Device)
	if err != nil {
		return deck.Transport("open", errors.Wrapf(err, "open %s", d.opts.Device))
	}
	d.dev = dev
	d.geometry = Plan(dev.Bounds(), d.opts.Columns, d.opts.Rows)
	if d.opts.Logger != nil {
		b := dev.Bounds()
		d.opts.Logger.Infof("fb", "framebuffer open, bounds=%dx%d, key size %dpx", b.Dx(), b.Dy(), d.geometry.KeySize)
	}
	_ = d.console.Graphics()

	kbd, err := system.OpenKeyboard(d.opts.Keyboard)
	if err != nil {
		if d.opts.Logger != nil {
			d.opts.Logger.Errorf("fb", "no keyboard, keys are display only: %v", err)
		}
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.tracker.Reset()
	events := make(chan buttons.Event, 32)
	go func() {
		defer close(events)
		err := system.ReadKeys(ctx, kbd, d.opts.Logger, func(code int, pressed bool) {
			if ev, ok := d.edge(code, pressed); ok {
				select {
				case events <- ev:
				case <-ctx.Done():
				}
			}
		})
		if err != nil && d.opts.Logger != nil {
			d.opts.Logger.Errorf("fb", "keyboard stopped: %v", err)
		}
	}()
	// callbacks run off the reader so they may close the deck
	go d.dispatch(events)
	return nil
}

func (d *Deck) edge(code int, pressed bool) (buttons.Event, bool) {
	slot, ok := SlotForCode(code, d.KeyCount())
	if !ok {
		return buttons.Event{}, false
	}
	return d.tracker.Set(slot, pressed)
}

func (d *Deck) dispatch(events <-chan buttons.Event) {
	for ev := range events {
		d.mu.Lock()
		fn := d.callback
		d.mu.Unlock()
		if fn != nil {
			fn(d, ev.Key, ev.Pressed)
		}
	}
}

func (d *Deck) Close() error {
	d.mu.Lock()
	dev, cancel := d.dev, d.cancel
	d.dev, d.cancel = nil, nil
	d.images = make(map[int]*image.RGBA)
	d.mu.Unlock()
	if dev == nil {
		return nil
	}
	if cancel != nil {
		cancel()
	}
	dev.Close()
	return d.console.Restore()
}

// Reset blanks every key and redraws the status panel.
func (d *Deck) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return deck.Transport("reset", deck.ErrClosed)
	}
	d.images = make(map[int]*image.RGBA)
	draw.Draw(d.dev, d.dev.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	return d.drawStatus()
}

func (d *Deck) SetBrightness(percent int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return deck.Transport("brightness", deck.ErrClosed)
	}
	d.brightness = percent
	for key, img := range d.images {
		d.drawKey(key, img)
	}
	return nil
}

func (d *Deck) SetKeyImage(key int, data []byte) error {
	if err := deck.CheckKey(d, key); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return deck.Transport(fmt.Sprintf("write key %d", key), deck.ErrClosed)
	}
	size := d.geometry.KeySize
	img, err := render.FromRaw(data, image.Pt(size, size))
	if err != nil {
		return errors.Wrapf(err, "key %d", key)
	}
	d.images[key] = img
	d.drawKey(key, img)
	return nil
}

func (d *Deck) SetKeyCallback(fn deck.KeyCallback) {
	d.mu.Lock()
	d.callback = fn
	d.mu.Unlock()
}

func (d *Deck) drawKey(key int, img *image.RGBA) {
	dimmed := image.NewRGBA(img.Rect)
	copy(dimmed.Pix, img.Pix)
	scaleBrightness(dimmed, d.brightness)
	rect := d.geometry.Keys[key]
	draw.Draw(d.dev, rect, dimmed, image.Point{}, draw.Src)
}

func (d *Deck) drawStatus() error {
	panel := d.geometry.Status
	draw.Draw(d.dev, panel, &image.Uniform{C: panelColor}, image.Point{}, draw.Src)

	qrArea, textArea := layout.SplitHorizontal(layout.Inset(panel, keyGap), panel.Dx())
	if err := render.DrawQRCode(d.dev, qrArea, d.opts.StatusURL); err != nil {
		return errors.Wrap(err, "status qr code")
	}
	style := render.TextStyle{Color: textColor, Face: basicfont.Face7x13, Align: render.TextAlignLeft}
	y := textArea.Min.Y + keyGap
	for _, line := range []string{d.DeckType(), d.opts.StatusURL} {
		if line == "" {
			continue
		}
		m := render.DrawText(d.dev, line, textArea.Min.X, y, style)
		y += m.Ascent + m.Descent + 4
	}
	return nil
}
