// Package hiddeck drives Elgato Stream Deck hardware over USB HID.
package hiddeck

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sstallion/go-hid"

	"github.com/rook-computer/flightdeck/internal/buttons"
	"github.com/rook-computer/flightdeck/internal/deck"
)

const readTimeout = 100 * time.Millisecond

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Init prepares the HID library. Call Exit when done.
func Init() error {
	return errors.Wrap(hid.Init(), "hid init")
}

func Exit() error {
	return errors.Wrap(hid.Exit(), "hid exit")
}

// Enumerate lists every supported Stream Deck. Unknown Elgato products are
// skipped and logged.
func Enumerate(logger Logger) ([]deck.Device, error) {
	var found []deck.Device
	err := hid.Enumerate(vendorID, 0, func(info *hid.DeviceInfo) error {
		m, ok := lookupModel(info.ProductID)
		if !ok {
			if logger != nil {
				logger.Infof("hid", "skipping unsupported Elgato product 0x%04x at %s", info.ProductID, info.Path)
			}
			return nil
		}
		found = append(found, newDeck(*info, m, logger))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "enumerate stream decks")
	}
	return found, nil
}

// Deck is one Stream Deck. Input is read on a background goroutine while
// open; key callbacks run on a separate goroutine so a callback may close
// the deck.
type Deck struct {
	info    hid.DeviceInfo
	model   model
	logger  Logger
	tracker *buttons.Tracker

	mu       sync.Mutex
	dev      *hid.Device
	callback deck.KeyCallback
	cancel   context.CancelFunc
	readerWG sync.WaitGroup
}

func newDeck(info hid.DeviceInfo, m model, logger Logger) *Deck {
	return &Deck{info: info, model: m, logger: logger, tracker: buttons.NewTracker(m.keys)}
}

func (d *Deck) ID() string       { return d.info.Path }
func (d *Deck) DeckType() string { return d.model.name }

func (d *Deck) KeyCount() int               { return d.model.keys }
func (d *Deck) KeyFormat() deck.ImageFormat { return d.model.format }

func (d *Deck) Serial() (string, error) {
	dev, err := d.handle()
	if err != nil {
		if d.info.SerialNbr != "" {
			return d.info.SerialNbr, nil
		}
		return "", err
	}
	id, length, offset := d.model.proto.serialReport()
	buf := make([]byte, length)
	buf[0] = id
	n, err := dev.GetFeatureReport(buf)
	if err != nil {
		return "", deck.Transport("serial", err)
	}
	if n <= offset {
		return "", deck.Transport("serial", fmt.Errorf("short report (%d bytes)", n))
	}
	return strings.TrimRight(string(buf[offset:n]), "\x00"), nil
}

func (d *Deck) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev != nil {
		return nil
	}
	dev, err := hid.OpenPath(d.info.Path)
	if err != nil {
		return deck.Transport("open", errors.Wrapf(err, "open %s", d.info.Path))
	}
	d.dev = dev
	d.tracker.Reset()
	if d.logger != nil {
		d.logger.Infof("hid", "%s open: %d keys in %d columns, %dpx %s", d.model.name, d.model.keys, d.model.columns, d.model.format.Size.X, d.model.format.Encoding)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	events := make(chan buttons.Event, 32)
	d.readerWG.Add(1)
	go d.readLoop(ctx, dev, events)
	go d.dispatchLoop(ctx, events)
	return nil
}

// Close stops the input reader and releases the device. Further calls fail
// with deck.ErrClosed.
func (d *Deck) Close() error {
	d.mu.Lock()
	dev, cancel := d.dev, d.cancel
	d.dev, d.cancel = nil, nil
	d.mu.Unlock()
	if dev == nil {
		return nil
	}
	cancel()
	d.readerWG.Wait()
	return deck.Transport("close", dev.Close())
}

func (d *Deck) Reset() error {
	return d.sendFeature("reset", d.model.proto.resetReport())
}

func (d *Deck) SetBrightness(percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return d.sendFeature("brightness", d.model.proto.brightnessReport(percent))
}

func (d *Deck) SetKeyImage(key int, data []byte) error {
	if err := deck.CheckKey(d, key); err != nil {
		return err
	}
	dev, err := d.handle()
	if err != nil {
		return err
	}
	for _, report := range pages(d.model.proto, key, data) {
		if _, err := dev.Write(report); err != nil {
			return deck.Transport(fmt.Sprintf("write key %d", key), err)
		}
	}
	return nil
}

func (d *Deck) SetKeyCallback(fn deck.KeyCallback) {
	d.mu.Lock()
	d.callback = fn
	d.mu.Unlock()
}

func (d *Deck) handle() (*hid.Device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return nil, deck.Transport("handle", deck.ErrClosed)
	}
	return d.dev, nil
}

func (d *Deck) sendFeature(op string, report []byte) error {
	dev, err := d.handle()
	if err != nil {
		return err
	}
	if _, err := dev.SendFeatureReport(report); err != nil {
		return deck.Transport(op, err)
	}
	return nil
}

func (d *Deck) readLoop(ctx context.Context, dev *hid.Device, events chan<- buttons.Event) {
	defer d.readerWG.Done()
	defer close(events)

	buf := make([]byte, d.model.proto.inputLength(d.model.keys))
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := dev.ReadWithTimeout(buf, readTimeout)
		if errors.Is(err, hid.ErrTimeout) || (err == nil && n == 0) {
			continue
		}
		if err != nil {
			if ctx.Err() == nil && d.logger != nil {
				d.logger.Errorf("hid", "%s: read failed: %v", d.model.name, err)
			}
			return
		}

		raw := d.model.proto.keyStates(buf[:n], d.model.keys)
		states := make([]bool, len(raw))
		for i, b := range raw {
			states[i] = b != 0
		}
		for _, ev := range d.tracker.Update(states) {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (d *Deck) dispatchLoop(ctx context.Context, events <-chan buttons.Event) {
	for ev := range events {
		if ctx.Err() != nil {
			return
		}
		d.mu.Lock()
		fn := d.callback
		d.mu.Unlock()
		if fn != nil {
			fn(d, ev.Key, ev.Pressed)
		}
	}
}
