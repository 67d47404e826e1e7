package web

import "net/http"

// RegisterAPIV1 registers the bridge API routes under /api/v1/.
func RegisterAPIV1(mux *http.ServeMux, deps APIV1Deps) {
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1RouterWithDeps(deps)))
}

// NewDefaultMux builds the mux used by the simulator binary. Extra routes can
// be added to the returned mux.
func NewDefaultMux(deps APIV1Deps) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterAPIV1(mux, deps)
	return mux
}
