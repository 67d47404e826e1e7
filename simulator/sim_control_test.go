package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rook-computer/flightdeck/internal/sim"
)

func newControl(t *testing.T) *SimControl {
	t.Helper()
	c := NewSimControl(nil, "cruise")
	if err := c.ApplyScenario(""); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestScenarioCycle(t *testing.T) {
	c := newControl(t)
	want := []string{"approach", "cold-and-dark", "cruise"}
	for _, name := range want {
		if err := c.NextScenario(); err != nil {
			t.Fatal(err)
		}
		if c.Scenario() != name {
			t.Fatalf("scenario = %s, want %s", c.Scenario(), name)
		}
	}
	if err := c.ApplyScenario("space"); err == nil {
		t.Fatal("unknown scenario accepted")
	}
	if c.Scenario() != "cruise" {
		t.Fatalf("failed switch changed scenario to %s", c.Scenario())
	}
}

func TestPauseStopsClock(t *testing.T) {
	c := newControl(t)
	before, _ := c.Aircraft.Get("GPS_ETE")

	c.SetPaused(true)
	c.Tick(10 * time.Second)
	if v, _ := c.Aircraft.Get("GPS_ETE"); v != before {
		t.Fatalf("ETE moved while paused: %v", v)
	}

	c.SetPaused(false)
	c.Tick(10 * time.Second)
	if v, _ := c.Aircraft.Get("GPS_ETE"); v != before-10 {
		t.Fatalf("ETE = %v, want %v", v, before-10)
	}
}

func TestSimEndpoints(t *testing.T) {
	c := newControl(t)
	mux := http.NewServeMux()
	registerSimEndpoints(mux, c)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/sim/vars", "application/json",
		strings.NewReader(`{"COM_ACTIVE_FREQUENCY:1":null,"GENERAL_ENG_RPM:1":2400}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if _, ok := c.Aircraft.Get("COM_ACTIVE_FREQUENCY:1"); ok {
		t.Fatal("null did not unset the variable")
	}
	if v, _ := c.Aircraft.Get("GENERAL_ENG_RPM:1"); v != 2400 {
		t.Fatalf("rpm = %v", v)
	}

	resp, err = http.Post(srv.URL+"/sim/scenario/approach", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || c.Scenario() != "approach" {
		t.Fatalf("status = %d, scenario = %s", resp.StatusCode, c.Scenario())
	}

	resp, err = http.Post(srv.URL+"/sim/scenario/space", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown scenario status = %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/sim/pause", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if !c.Paused() {
		t.Fatal("not paused")
	}

	resp, err = http.Post(srv.URL+"/sim/reset", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if c.Scenario() != "cruise" || c.Paused() {
		t.Fatalf("reset left scenario=%s paused=%t", c.Scenario(), c.Paused())
	}
}

func TestKeyEventsAreKnown(t *testing.T) {
	aircraft := sim.NewAircraft(nil)
	for r, event := range keyEvents {
		if _, err := aircraft.Find(event); err != nil {
			t.Errorf("key %c: %v", r, err)
		}
	}
}

func TestDisplayAddr(t *testing.T) {
	tests := map[string]string{
		":8080":         "127.0.0.1:8080",
		"[::]:8080":     "127.0.0.1:8080",
		"10.0.0.2:9000": "10.0.0.2:9000",
	}
	for in, want := range tests {
		if got := displayAddr(in); got != want {
			t.Errorf("displayAddr(%q) = %q, want %q", in, got, want)
		}
	}
}
