//go:build linux

package system

import (
	"context"
	"fmt"

	evdev "github.com/gvalkov/golang-evdev"
)

const inputGlob = "/dev/input/event*"

// KeyHandler receives evdev key codes; repeats are not reported.
type KeyHandler func(code int, pressed bool)

// OpenKeyboard opens path, or the first input device with letter keys when
// path is empty.
func OpenKeyboard(path string) (*evdev.InputDevice, error) {
	if path != "" {
		return evdev.Open(path)
	}
	devices, err := evdev.ListInputDevices(inputGlob)
	if err != nil {
		return nil, err
	}
	var found *evdev.InputDevice
	for _, dev := range devices {
		if found == nil && hasKey(dev, evdev.KEY_Q) {
			found = dev
			continue
		}
		_ = dev.File.Close()
	}
	if found == nil {
		return nil, fmt.Errorf("no keyboard under %s", inputGlob)
	}
	return found, nil
}

func hasKey(dev *evdev.InputDevice, code int) bool {
	for capType, codes := range dev.Capabilities {
		if capType.Type != evdev.EV_KEY {
			continue
		}
		for _, c := range codes {
			if c.Code == code {
				return true
			}
		}
	}
	return false
}

// ReadKeys delivers key presses and releases from dev until ctx is done or
// the device fails. The device is grabbed while reading and closed on return.
func ReadKeys(ctx context.Context, dev *evdev.InputDevice, logger logger, handle KeyHandler) error {
	if err := dev.Grab(); err != nil && logger != nil {
		logger.Errorf("input", "grab %s failed: %v", dev.Fn, err)
	}
	stop := context.AfterFunc(ctx, func() { _ = dev.File.Close() })
	defer stop()
	defer func() {
		_ = dev.Release()
		_ = dev.File.Close()
	}()

	if logger != nil {
		logger.Infof("input", "reading keys from %s (%s)", dev.Fn, dev.Name)
	}
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if ev.Type != evdev.EV_KEY {
			continue
		}
		key := evdev.NewKeyEvent(ev)
		switch key.State {
		case evdev.KeyDown:
			handle(int(key.Scancode), true)
		case evdev.KeyUp:
			handle(int(key.Scancode), false)
		}
	}
}
