package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rook-computer/flightdeck/internal/sim"
)

type apiError = sim.ErrorResponse

type okResponse = sim.EventResponse

type statusResponse struct {
	OK            bool     `json:"ok"`
	Simulator     string   `json:"simulator"`
	UptimeSeconds int64    `json:"uptimeSeconds"`
	Events        []string `json:"events,omitempty"`
}

func apiV1RouterWithDeps(deps APIV1Deps) http.Handler {
	deps = deps.withDefaults()
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) { handleStatus(w, r, deps) })
	mux.HandleFunc("/vars", func(w http.ResponseWriter, r *http.Request) { handleVars(w, r, deps) })
	mux.HandleFunc("/vars/", func(w http.ResponseWriter, r *http.Request) { handleVars(w, r, deps) })
	mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) { handleEvent(w, r, deps) })
	return mux
}

func handleStatus(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	resp := statusResponse{
		OK:            true,
		Simulator:     deps.Name,
		UptimeSeconds: int64(deps.Now().Sub(deps.Started).Seconds()),
	}
	if lister, ok := deps.Sim.(EventLister); ok {
		resp.Events = lister.Events()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleVars serves GET /vars/{name} and the batch form GET /vars?name=a&name=b.
// A variable the simulator has no value for is reported with a null value.
func handleVars(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/vars"), "/")
	if name != "" {
		if strings.Contains(name, "/") {
			writeAPIError(w, http.StatusNotFound, "not_found", "not found")
			return
		}
		writeJSON(w, http.StatusOK, readVariable(deps.Sim, name))
		return
	}

	names := r.URL.Query()["name"]
	if len(names) == 0 {
		writeAPIError(w, http.StatusBadRequest, "missing_name", "at least one name parameter is required")
		return
	}
	out := make([]sim.VariableResponse, 0, len(names))
	for _, n := range names {
		out = append(out, readVariable(deps.Sim, n))
	}
	writeJSON(w, http.StatusOK, out)
}

func handleEvent(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/events/"), "/")
	if name == "" || strings.Contains(name, "/") {
		writeAPIError(w, http.StatusNotFound, "not_found", "not found")
		return
	}

	if err := sim.Trigger(deps.Sim, name); err != nil {
		if errors.Is(err, sim.ErrUnknownEvent) {
			writeAPIError(w, http.StatusNotFound, "unknown_event", "unknown event "+name)
			return
		}
		deps.Logger.Errorf("web", "event %s failed: %v", name, err)
		writeAPIError(w, http.StatusInternalServerError, "event_failed", err.Error())
		return
	}
	deps.Logger.Infof("web", "event %s", name)
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func readVariable(c sim.Telemetry, name string) sim.VariableResponse {
	resp := sim.VariableResponse{Name: name}
	if value, ok := c.Get(name); ok {
		resp.Value = &value
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
