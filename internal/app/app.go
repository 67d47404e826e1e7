package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rook-computer/flightdeck/internal/deck"
	"github.com/rook-computer/flightdeck/internal/keymap"
	"github.com/rook-computer/flightdeck/internal/render"
	"github.com/rook-computer/flightdeck/internal/sim"
)

type App struct {
	Decks      []deck.Device
	Layout     *keymap.Layout
	AssetsDir  string
	Renderer   render.Renderer
	Sim        sim.Client
	Brightness int
	Interval   time.Duration
	Logger     Logger

	mu       sync.Mutex
	sessions []*Session

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(decks []deck.Device, client sim.Client, renderer render.Renderer) *App {
	return &App{
		Decks:      decks,
		Layout:     keymap.Default(),
		Renderer:   renderer,
		Sim:        client,
		Brightness: DefaultBrightness,
		Interval:   DefaultRefreshInterval,
		Logger:     NoopLogger{},
		exitCh:     make(chan error, 1),
	}
}

// Exit requests the app to stop running. The first call wins.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Start opens every deck and refreshes them until each one has been closed
// with its exit key, ctx is done, or a deck fails. Remaining decks are closed
// before Start returns.
func (app *App) Start(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)
	if len(app.Decks) == 0 {
		return deck.ErrNoDevices
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, dev := range app.Decks {
		s, err := app.openSession(runCtx, dev)
		if err != nil {
			app.closeAll()
			return err
		}
		app.mu.Lock()
		app.sessions = append(app.sessions, s)
		app.mu.Unlock()
	}

	var wg sync.WaitGroup
	for _, s := range app.Sessions() {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			if err := s.Run(); err != nil {
				app.Logger.Errorf("app", "Deck %s refresher failed: %v", s.Device.ID(), err)
				app.Exit(err)
			}
		}(s)
	}
	allDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(allDone)
	}()

	var err error
	select {
	case <-allDone:
		app.Logger.Infof("app", "all decks closed")
	case err = <-app.exitCh:
	case <-ctx.Done():
		err = ctx.Err()
	}
	cancel()
	wg.Wait()
	app.closeAll()
	return err
}

func (app *App) openSession(ctx context.Context, dev deck.Device) (*Session, error) {
	base := app.Layout
	if base == nil {
		base = keymap.Default()
	}
	layout, dropped := base.Fit(dev.KeyCount())
	for _, b := range dropped {
		app.Logger.Infof("app", "%s: no room for %s on slot %d", dev.DeckType(), b.Variable, b.Slot)
	}
	if err := layout.Validate(dev.KeyCount()); err != nil {
		return nil, fmt.Errorf("%s: %w", dev.DeckType(), err)
	}

	s := NewSession(dev, keymap.NewResolver(layout, app.AssetsDir), app.Renderer, app.Sim)
	s.Brightness = app.Brightness
	s.Interval = app.Interval
	s.Logger = app.Logger
	s.OnFatal = app.Exit
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	app.Logger.Infof("app", "%s", deck.Describe(dev))
	return s, nil
}

// Sessions returns the decks opened by Start.
func (app *App) Sessions() []*Session {
	app.mu.Lock()
	defer app.mu.Unlock()
	return append([]*Session(nil), app.sessions...)
}

func (app *App) closeAll() {
	for _, s := range app.Sessions() {
		if err := s.Close(); err != nil {
			app.Logger.Errorf("app", "Deck %s close failed: %v", s.Device.ID(), err)
		}
	}
}
