// Package api exposes the inbound task endpoint and the run read API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/briefpress/briefpress/internal/domain"
	"github.com/briefpress/briefpress/internal/taskstore"
)

// Store interface for journal read operations
type Store interface {
	ListRuns(opts taskstore.ListOptions) ([]*domain.Run, error)
	GetRun(id string) (*domain.Run, error)
	CountByStatus() (map[domain.RunStatus]int, error)
}

// Dispatcher accepts validated task requests for background processing.
type Dispatcher interface {
	Dispatch(req *domain.TaskRequest) string
}

// Server is the HTTP API server
type Server struct {
	store      Store
	dispatcher Dispatcher
	secret     string
	addr       string
	mux        *http.ServeMux
	hub        *EventHub
}

// NewServer creates a new API server
func NewServer(store Store, dispatcher Dispatcher, secret, addr string) *Server {
	s := &Server{
		store:      store,
		dispatcher: dispatcher,
		secret:     secret,
		addr:       addr,
		mux:        http.NewServeMux(),
		hub:        NewEventHub(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/", s.rootHandler())
	s.mux.HandleFunc("/api/tasks", s.taskHandler())
	s.mux.HandleFunc("/api/runs", s.listRunsHandler())
	s.mux.HandleFunc("/api/runs/", s.getRunHandler())
	s.mux.HandleFunc("/api/status", s.statusHandler())
	s.mux.HandleFunc("/api/events", s.sseHandler())
	s.mux.HandleFunc("/api/ws", s.wsHandler())
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go s.hub.Run()
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler returns the server's routing handler (for tests)
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Emit broadcasts a run lifecycle event to all SSE and websocket subscribers.
func (s *Server) Emit(eventType string, data any) {
	s.hub.Broadcast(Event{Type: eventType, Data: data})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
