// Package fakeapi is an in-process blog backend for package tests. Tests
// register only the routes they exercise.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/angelmondragon/finblog-client/pkg/apiclient"
	"github.com/go-chi/chi/v5"
)

// Server wraps an httptest server routed by chi.
type Server struct {
	*httptest.Server
	Router chi.Router

	mu    sync.Mutex
	calls map[string]int
}

// New starts a server whose routes live under /api and stops it on cleanup.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{calls: make(map[string]int)}
	root := chi.NewRouter()
	root.Use(s.count)
	root.Route("/api", func(r chi.Router) {
		s.Router = r
	})
	s.Server = httptest.NewServer(root)
	t.Cleanup(s.Close)
	return s
}

// Client returns an API client pointed at the server.
func (s *Server) Client(t testing.TB, opts ...apiclient.Option) *apiclient.Client {
	t.Helper()
	client, err := apiclient.NewClient(s.URL+"/api", opts...)
	if err != nil {
		t.Fatalf("new api client: %v", err)
	}
	return client
}

// Calls reports how many requests hit method and path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// WriteSuccess writes {success:true,data}.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"success": true, "data": data})
}

// WriteList writes a list with its pagination object at the envelope level.
func WriteList(w http.ResponseWriter, items any, pagination map[string]any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": items, "pagination": pagination})
}

// WriteError writes {success:false,message,error:{code}}.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	body := map[string]any{"success": false, "error": map[string]any{"code": code}}
	if message != "" {
		body["message"] = message
	}
	writeJSON(w, status, body)
}

// WriteErrorDetails is WriteError with an error.details object.
func WriteErrorDetails(w http.ResponseWriter, status int, code, message string, details any) {
	body := map[string]any{"success": false, "error": map[string]any{"code": code, "details": details}}
	if message != "" {
		body["message"] = message
	}
	writeJSON(w, status, body)
}

// Decode reads a JSON request body into dest.
func Decode(t testing.TB, r *http.Request, dest any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		t.Errorf("decode request body: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
