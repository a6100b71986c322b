// Package httpexport exposes a Receiver's Meters snapshots over HTTP,
// the way pascaldekloe/metrics' Register.ServeHTTP exposes its registry:
// read-only, GET/HEAD-only, with the exposition format chosen by path.
package httpexport

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/flowstat/flowstat"
)

// Handler routes requests to a Controller snapshot, rendering the result
// as the Prometheus-style line format for /vars and /metrics and as JSON
// for every other path, mirroring the routing rule documented for this
// exporter. A failed snapshot (ErrControlRejected, ErrSnapshotReplyLost)
// is reported as HTTP 500 with the error text as the body.
type Handler[L flowstat.Label] struct {
	controller *flowstat.Controller[L]
	router     *mux.Router
}

// NewHandler builds a Handler bound to ctrl.
func NewHandler[L flowstat.Label](ctrl *flowstat.Controller[L]) *Handler[L] {
	h := &Handler[L]{controller: ctrl}

	r := mux.NewRouter()
	r.HandleFunc("/vars", h.serveLine).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/metrics", h.serveLine).Methods(http.MethodGet, http.MethodHead)
	r.PathPrefix("/").HandlerFunc(h.serveJSON).Methods(http.MethodGet, http.MethodHead)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	h.router = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler[L]) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	h.router.ServeHTTP(resp, req)
}

func methodNotAllowed(resp http.ResponseWriter, req *http.Request) {
	resp.Header().Set("Allow", http.MethodOptions+", "+http.MethodGet+", "+http.MethodHead)
	if req.Method != http.MethodOptions {
		http.Error(resp, "read-only resource", http.StatusMethodNotAllowed)
	}
}

func (h *Handler[L]) serveLine(resp http.ResponseWriter, req *http.Request) {
	m, err := h.controller.GetMeters()
	if err != nil {
		http.Error(resp, err.Error(), http.StatusInternalServerError)
		return
	}
	resp.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=UTF-8")
	m.WriteLine(resp)
}

func (h *Handler[L]) serveJSON(resp http.ResponseWriter, req *http.Request) {
	m, err := h.controller.GetMeters()
	if err != nil {
		http.Error(resp, err.Error(), http.StatusInternalServerError)
		return
	}
	data, err := m.MarshalJSON()
	if err != nil {
		http.Error(resp, err.Error(), http.StatusInternalServerError)
		return
	}
	resp.Header().Set("Content-Type", "application/json; charset=UTF-8")
	resp.Write(data)
}
