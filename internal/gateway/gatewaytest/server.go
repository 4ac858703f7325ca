// Package gatewaytest provides an in-memory Pixotope gateway for tests.
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// SetCall records one Type=Set request.
type SetCall struct {
	Name   string
	Value  string
	Target string
}

// Server is a fake gateway. Values written with Type=Set are stored as
// strings and read back by later Type=Get requests.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	values map[string]any
	sets   []SetCall
	fail   map[string]int
	gets   int
}

// NewServer starts a fake gateway. Close it when done.
func NewServer() *Server {
	s := &Server{
		values: make(map[string]any),
		fail:   make(map[string]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/gateway/publish", s.handle)
	s.Server = httptest.NewServer(mux)
	return s
}

// Endpoint returns the base URL to hand to gateway.NewClient.
func (s *Server) Endpoint() string {
	return s.URL + "/gateway"
}

// SetValue stores the value returned for property.
func (s *Server) SetValue(property string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[property] = value
}

// SetCameras stores a camera object keyed by id, the way the gateway
// reports State.Cameras.
func (s *Server) SetCameras(byID map[string]string) {
	obj := make(map[string]any, len(byID))
	for id, name := range byID {
		obj[id] = map[string]string{"Name": name}
	}
	s.SetValue("State.Cameras", obj)
}

// FailWith makes requests for property answer with status code until
// cleared with a zero code.
func (s *Server) FailWith(property string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == 0 {
		delete(s.fail, property)
		return
	}
	s.fail[property] = code
}

// Sets returns the recorded Type=Set requests.
func (s *Server) Sets() []SetCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SetCall, len(s.sets))
	copy(out, s.sets)
	return out
}

// Gets returns the number of Type=Get requests served.
func (s *Server) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := q.Get("Name")

	s.mu.Lock()
	defer s.mu.Unlock()

	if code, ok := s.fail[name]; ok {
		http.Error(w, "forced failure", code)
		return
	}

	switch q.Get("Type") {
	case "Get":
		s.gets++
		value, ok := s.values[name]
		if !ok {
			w.Write([]byte("[]"))
			return
		}
		resp := []map[string]any{{"Message": map[string]any{"Value": value}}}
		json.NewEncoder(w).Encode(resp)
	case "Set":
		call := SetCall{Name: name, Value: q.Get("Value"), Target: q.Get("Target")}
		s.sets = append(s.sets, call)
		s.values[name] = call.Value
		w.Write([]byte("[]"))
	default:
		http.Error(w, "unknown type", http.StatusBadRequest)
	}
}
