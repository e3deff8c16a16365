// Package monitor turns a coupled run into a small web server so the state
// of its transfers and recording streams can be inspected while the run is
// in flight.
package monitor

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/esmlab/coupler/exchange"
	"github.com/esmlab/coupler/stream"
)

// A Monitor serves the live state of a run over HTTP.
type Monitor struct {
	portNumber int

	registry *exchange.Registry
	streams  []*stream.Stream
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterRegistry registers the exchange registry to monitor.
func (m *Monitor) RegisterRegistry(r *exchange.Registry) {
	m.registry = r
}

// RegisterStream registers a recording stream to monitor.
func (m *Monitor) RegisterStream(s *stream.Stream) {
	m.streams = append(m.streams, s)
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/transfers", m.listTransfers)
	r.HandleFunc("/api/transfer/{name}", m.transferDetails)
	r.HandleFunc("/api/streams", m.listStreams)

	return r
}

// StartServer starts the monitor as a web server, on the configured port if
// one was set.
func (m *Monitor) StartServer() {
	r := m.router()

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	fmt.Fprintf(
		os.Stderr,
		"Monitoring run with http://localhost:%d\n",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		err = http.Serve(listener, r)
		dieOnErr(err)
	}()
}

func (m *Monitor) listTransfers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.registry.Transfers())
}

type transferStatus struct {
	Name    string    `json:"name"`
	Method  string    `json:"method"`
	History int       `json:"history"`
	Current []float64 `json:"current"`
}

func (m *Monitor) transferDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	t, ok := m.registry.Transfer(name)
	if !ok {
		http.Error(w, "transfer not found", http.StatusNotFound)
		return
	}

	writeJSON(w, transferStatus{
		Name:    t.Name(),
		Method:  t.Method().String(),
		History: t.History(),
		Current: t.Current(),
	})
}

type streamStatus struct {
	Name       string   `json:"name"`
	Quantities []string `json:"quantities"`
	Flushes    int      `json:"flushes"`
}

func (m *Monitor) listStreams(w http.ResponseWriter, _ *http.Request) {
	statuses := make([]streamStatus, 0, len(m.streams))

	for _, s := range m.streams {
		statuses = append(statuses, streamStatus{
			Name:       s.Name(),
			Quantities: s.Quantities(),
			Flushes:    s.Flushes(),
		})
	}

	writeJSON(w, statuses)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	err := json.NewEncoder(w).Encode(v)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
