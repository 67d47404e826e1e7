package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rook-computer/flightdeck/internal/deck"
	"github.com/rook-computer/flightdeck/internal/deck/decktest"
	"github.com/rook-computer/flightdeck/internal/sim/simtest"
)

func startApp(t *testing.T, a *App) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- a.Start(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for len(a.Sessions()) < len(a.Decks) {
		if time.Now().After(deadline) {
			t.Fatal("decks not opened")
		}
		time.Sleep(time.Millisecond)
	}
	return done
}

func waitStart(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return")
		return nil
	}
}

func TestStartRunsUntilEveryDeckExits(t *testing.T) {
	big, mini := decktest.New(15), decktest.New(6)
	rec := simtest.NewRecorder(nil)
	a := New([]deck.Device{big, mini}, rec, nameRenderer{})
	a.Interval = 10 * time.Millisecond

	done := startApp(t, a)

	big.Press(14)
	select {
	case err := <-done:
		t.Fatalf("Start returned %v with a deck still open", err)
	case <-time.After(30 * time.Millisecond):
	}

	mini.Press(0)
	if rec.Count("AP_MASTER") != 1 {
		t.Fatalf("mini AP key fired %v", rec.Fired())
	}
	mini.Press(5)

	if err := waitStart(t, done); err != nil {
		t.Fatalf("Start = %v", err)
	}
	if !big.Closed() || !mini.Closed() {
		t.Fatal("decks left open")
	}
	if got := string(mini.UploadsFor(5)[0].Data); got != "exit|Exit" {
		t.Fatalf("mini exit key = %q", got)
	}
}

func TestStartWithoutDecks(t *testing.T) {
	a := New(nil, simtest.NewRecorder(nil), nameRenderer{})
	if err := a.Start(context.Background()); !errors.Is(err, deck.ErrNoDevices) {
		t.Fatalf("Start = %v, want ErrNoDevices", err)
	}
}

func TestStartStopsOnTransportFailure(t *testing.T) {
	healthy, failing := decktest.New(15), decktest.New(15)
	a := New([]deck.Device{healthy, failing}, simtest.NewRecorder(nil), nameRenderer{})
	a.Interval = 5 * time.Millisecond

	done := startApp(t, a)
	failing.FailUploads(true)

	var transport *deck.TransportError
	if err := waitStart(t, done); !errors.As(err, &transport) {
		t.Fatalf("Start = %v, want transport error", err)
	}
	if !healthy.Closed() {
		t.Fatal("healthy deck not closed on shutdown")
	}
}

func TestStartHonoursContext(t *testing.T) {
	dev := decktest.New(15)
	a := New([]deck.Device{dev}, simtest.NewRecorder(nil), nameRenderer{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()
	for len(a.Sessions()) == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	if err := waitStart(t, done); !errors.Is(err, context.Canceled) {
		t.Fatalf("Start = %v", err)
	}
	if !dev.Closed() {
		t.Fatal("deck left open")
	}
}

func TestKeyEdgesAreLogged(t *testing.T) {
	var buf bytes.Buffer
	s, dev, _ := newTestSession(t, 15, time.Hour)
	s.Logger = NewFileLogger(&buf)

	dev.Press(3)

	out := buf.String()
	if !strings.Contains(out, "[INFO] deck: Deck fake:Fake Deck Key 3 = true") ||
		!strings.Contains(out, "Key 3 = false") {
		t.Fatalf("log = %q", out)
	}
}

func TestStartRejectsDeckWithoutKeys(t *testing.T) {
	dev := decktest.New(0)
	a := New([]deck.Device{dev}, simtest.NewRecorder(nil), nameRenderer{})

	if err := a.Start(context.Background()); err == nil {
		t.Fatal("Start accepted a deck with no keys")
	}
	if dev.IsOpen() {
		t.Fatal("deck opened despite an unusable layout")
	}
}
