// Package testutil provides an in-process fake of the code-execution API for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jmylchreest/execprobe/internal/codeapi"
)

// Response is a canned reply. A string Body is written verbatim; anything
// else is JSON-encoded.
type Response struct {
	Status int
	Body   any
}

// ExecuteCall records one POST /execute received by the fake.
type ExecuteCall struct {
	Payload codeapi.ExecuteRequest
	Header  http.Header
}

// ExecuteFunc decides the reply to an execute call. Returning a nil
// Response drops the connection to simulate a transport failure.
type ExecuteFunc func(call ExecuteCall) *Response

// FakeAPI serves /execute and /health from an httptest.Server.
type FakeAPI struct {
	mu          sync.Mutex
	server      *httptest.Server
	apiKey      string
	health      *Response
	execute     ExecuteFunc
	calls       []ExecuteCall
	healthCalls []http.Header
}

// NewFakeAPI starts a fake that reports healthy and answers every execution
// with empty output.
func NewFakeAPI() *FakeAPI {
	f := &FakeAPI{
		health: &Response{Status: http.StatusOK, Body: map[string]any{"status": "healthy", "docker": true}},
		execute: func(ExecuteCall) *Response {
			return &Response{Status: http.StatusOK, Body: map[string]any{"output": "", "execution_time": 0.01}}
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(f.checkAPIKey)
	r.Get("/health", f.handleHealth)
	r.Post("/execute", f.handleExecute)

	f.server = httptest.NewServer(r)
	return f
}

// Close shuts the server down.
func (f *FakeAPI) Close() { f.server.Close() }

// URL returns the server root.
func (f *FakeAPI) URL() string { return f.server.URL }

// ExecuteURL returns the URL of the execute endpoint.
func (f *FakeAPI) ExecuteURL() string { return f.server.URL + "/execute" }

// RequireAPIKey makes every route answer 401 unless X-API-Key equals key.
func (f *FakeAPI) RequireAPIKey(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiKey = key
}

// SetHealth sets the reply to GET /health. A nil Response drops the connection.
func (f *FakeAPI) SetHealth(resp *Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.health = resp
}

// SetExecute sets the function answering POST /execute.
func (f *FakeAPI) SetExecute(fn ExecuteFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execute = fn
}

// Calls returns the execute calls received so far, in order.
func (f *FakeAPI) Calls() []ExecuteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ExecuteCall(nil), f.calls...)
}

// HealthCalls returns the request headers of every health check received.
func (f *FakeAPI) HealthCalls() []http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]http.Header(nil), f.healthCalls...)
}

func (f *FakeAPI) checkAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		key := f.apiKey
		f.mu.Unlock()

		if key != "" && r.Header.Get(codeapi.HeaderAPIKey) != key {
			http.Error(w, `{"detail":"Invalid API key"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.healthCalls = append(f.healthCalls, r.Header.Clone())
	resp := f.health
	f.mu.Unlock()

	write(w, resp)
}

func (f *FakeAPI) handleExecute(w http.ResponseWriter, r *http.Request) {
	var call ExecuteCall
	if err := json.NewDecoder(r.Body).Decode(&call.Payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	call.Header = r.Header.Clone()

	f.mu.Lock()
	f.calls = append(f.calls, call)
	fn := f.execute
	f.mu.Unlock()

	write(w, fn(call))
}

func write(w http.ResponseWriter, resp *Response) {
	if resp == nil {
		// Hijack and close so the client sees a transport error.
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				conn.Close()
				return
			}
		}
		panic(http.ErrAbortHandler)
	}

	if s, ok := resp.Body.(string); ok {
		w.WriteHeader(resp.Status)
		_, _ = w.Write([]byte(s))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_ = json.NewEncoder(w).Encode(resp.Body)
}
