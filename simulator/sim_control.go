package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rook-computer/flightdeck/internal/sim"
)

// SimControl owns the simulated aircraft and the /sim/* test endpoints.
type SimControl struct {
	Aircraft *sim.Aircraft

	startupScenario string

	mu      sync.RWMutex
	current string
	paused  bool
}

func NewSimControl(aircraft *sim.Aircraft, startupScenario string) *SimControl {
	if aircraft == nil {
		aircraft = sim.NewAircraft(nil)
	}
	startupScenario = strings.TrimSpace(startupScenario)
	if startupScenario == "" {
		startupScenario = "cruise"
	}
	return &SimControl{Aircraft: aircraft, startupScenario: startupScenario}
}

func (c *SimControl) ApplyScenario(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.startupScenario
	}
	if err := c.Aircraft.LoadScenario(name); err != nil {
		return err
	}
	c.mu.Lock()
	c.current = name
	c.mu.Unlock()
	return nil
}

func (c *SimControl) Reset() error {
	c.SetPaused(false)
	return c.ApplyScenario(c.startupScenario)
}

func (c *SimControl) Scenario() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// NextScenario switches to the scenario after the current one, wrapping.
func (c *SimControl) NextScenario() error {
	names := sim.ScenarioNames()
	current := c.Scenario()
	next := names[0]
	for i, name := range names {
		if name == current {
			next = names[(i+1)%len(names)]
			break
		}
	}
	return c.ApplyScenario(next)
}

func (c *SimControl) Paused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

func (c *SimControl) SetPaused(paused bool) {
	c.mu.Lock()
	c.paused = paused
	c.mu.Unlock()
}

// Tick advances simulated time unless the simulation is paused.
func (c *SimControl) Tick(elapsed time.Duration) {
	if c.Paused() {
		return
	}
	c.Aircraft.Advance(elapsed)
}

// SetVariables applies a patch; a nil value makes the variable unknown.
func (c *SimControl) SetVariables(patch map[string]*float64) {
	for name, value := range patch {
		if value == nil {
			c.Aircraft.Store.Unset(name)
			continue
		}
		c.Aircraft.Store.Set(name, *value)
	}
}

type simStatus struct {
	OK       bool   `json:"ok"`
	Scenario string `json:"scenario"`
	Paused   bool   `json:"paused"`
}

func (c *SimControl) status() simStatus {
	return simStatus{OK: true, Scenario: c.Scenario(), Paused: c.Paused()}
}

func registerSimEndpoints(mux *http.ServeMux, control *SimControl) {
	mux.HandleFunc("/sim/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := control.Reset(); err != nil {
			writeSimError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeSimJSON(w, http.StatusOK, control.status())
	})

	mux.HandleFunc("/sim/scenario/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/sim/scenario/"), "/")
		if err := control.ApplyScenario(name); err != nil {
			writeSimError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeSimJSON(w, http.StatusOK, control.status())
	})

	mux.HandleFunc("/sim/pause", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			control.SetPaused(true)
		case http.MethodDelete:
			control.SetPaused(false)
		default:
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeSimJSON(w, http.StatusOK, control.status())
	})

	mux.HandleFunc("/sim/vars", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeSimJSON(w, http.StatusOK, control.Aircraft.Store.Snapshot().Values)
		case http.MethodPost:
			var patch map[string]*float64
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			control.SetVariables(patch)
			writeSimJSON(w, http.StatusOK, control.Aircraft.Store.Snapshot().Values)
		default:
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": message})
}

func describeScenarios() string {
	return fmt.Sprintf("scenario: %s", strings.Join(sim.ScenarioNames(), " | "))
}
