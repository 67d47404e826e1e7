package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rook-computer/flightdeck/internal/deck"
	"github.com/rook-computer/flightdeck/internal/keymap"
	"github.com/rook-computer/flightdeck/internal/render"
	"github.com/rook-computer/flightdeck/internal/sim"
)

const (
	DefaultBrightness      = 40
	DefaultRefreshInterval = time.Second
)

// Session owns one open deck. Key updates from the input callback and the
// refresher render concurrently but reach the device one at a time.
type Session struct {
	Device     deck.Device
	Resolver   *keymap.Resolver
	Renderer   render.Renderer
	Sim        sim.Client
	Brightness int
	Interval   time.Duration
	Logger     Logger
	// OnFatal receives errors from the input callback that must stop the
	// process, such as a failed upload.
	OnFatal func(error)

	mu     sync.Mutex
	closed bool

	ctx        context.Context
	cancel     context.CancelFunc
	stopParent func() bool
}

func NewSession(dev deck.Device, resolver *keymap.Resolver, renderer render.Renderer, client sim.Client) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ctx:        ctx,
		cancel:     cancel,
		Device:     dev,
		Resolver:   resolver,
		Renderer:   renderer,
		Sim:        client,
		Brightness: DefaultBrightness,
		Interval:   DefaultRefreshInterval,
		Logger:     NoopLogger{},
	}
}

// Open brings the deck up: open, reset, brightness, one full pass of key
// images, then input. The session lives until Close or until parent is done.
func (s *Session) Open(parent context.Context) error {
	s.stopParent = context.AfterFunc(parent, s.cancel)

	if err := s.Device.Open(); err != nil {
		s.cancel()
		return err
	}
	s.mu.Lock()
	err := s.Device.Reset()
	if err == nil {
		err = s.Device.SetBrightness(s.Brightness)
	}
	s.mu.Unlock()
	if err != nil {
		_ = s.Device.Close()
		s.cancel()
		return err
	}
	if err := s.UpdateAll(); err != nil {
		_ = s.Close()
		return err
	}
	s.Device.SetKeyCallback(s.HandleKey)
	return nil
}

// UpdateKey redraws one key. Rendering happens outside the device lock.
func (s *Session) UpdateKey(key int, pressed bool) error {
	style := s.Resolver.Resolve(key, pressed, s.Device.KeyCount(), s.Sim)
	data, err := s.Renderer.Render(style, s.Device.KeyFormat())
	if err != nil {
		return fmt.Errorf("render key %d (%s): %w", key, style.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return deck.ErrClosed
	}
	return s.Device.SetKeyImage(key, data)
}

// UpdateAll redraws every key as released.
func (s *Session) UpdateAll() error {
	for key := 0; key < s.Device.KeyCount(); key++ {
		if err := s.UpdateKey(key, false); err != nil {
			return err
		}
	}
	return nil
}

// HandleKey is the deck's key callback.
func (s *Session) HandleKey(_ deck.Device, key int, pressed bool) {
	s.Logger.Infof("deck", "Deck %s Key %d = %t", s.Device.ID(), key, pressed)

	if err := s.UpdateKey(key, pressed); err != nil {
		s.fatal(err)
		return
	}
	if !pressed {
		return
	}

	if keymap.IsExit(key, s.Device.KeyCount()) {
		if err := s.Close(); err != nil {
			s.fatal(err)
		}
		return
	}

	event, ok := s.Resolver.Layout.Event(key)
	if !ok {
		return
	}
	if err := sim.Trigger(s.Sim, event); err != nil {
		s.Logger.Errorf("sim", "event %s failed: %v", event, err)
	}
}

// Run refreshes every key each Interval until the session is closed or its
// parent context is done. A transport or render failure is returned.
func (s *Session) Run() error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.UpdateAll(); err != nil {
				if s.Closed() {
					return nil
				}
				return err
			}
		}
	}
}

// Close resets and closes the deck and stops the refresher. It is safe to
// call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.cancel()
	if s.stopParent != nil {
		s.stopParent()
	}
	s.Device.SetKeyCallback(nil)

	err := s.Device.Reset()
	if cerr := s.Device.Close(); err == nil {
		err = cerr
	}
	s.Logger.Infof("deck", "Deck %s closed", s.Device.ID())
	return err
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Done is closed once the session has been closed or the context given to
// Open is done.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Session) fatal(err error) {
	if errors.Is(err, deck.ErrClosed) && s.Closed() {
		return
	}
	s.Logger.Errorf("deck", "Deck %s: %v", s.Device.ID(), err)
	if s.OnFatal != nil {
		s.OnFatal(err)
	}
}
