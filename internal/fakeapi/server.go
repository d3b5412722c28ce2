// Package fakeapi provides an in-memory notes backend for tests.
//
// It speaks the same REST contract as the real API: bearer-token auth,
// JSON bodies, and {"message": "..."} error bodies. Failures can be injected
// per route with Fail.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/notesapp/notes/pkg/domain"
)

// Failure is an injected response for a route.
type Failure struct {
	Status  int
	Message string // written as {"message": ...} when non-empty
	RawBody string // written verbatim when Message is empty
}

type account struct {
	user     domain.User
	password string
	token    string
}

// Server is a fake notes API.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]*account      // by email
	tokens   map[string]string        // token -> email
	notes    map[string][]domain.Note // email -> notes, oldest first
	failures map[string]Failure       // "METHOD /path-template" -> failure
	requests []*http.Request
}

// New starts a fake server. The API is served under /api.
func New() *Server {
	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		notes:    make(map[string][]domain.Note),
		failures: make(map[string]Failure),
	}

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.record)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/signup", s.handleSignup).Methods(http.MethodPost)
	api.HandleFunc("/notes", s.authed(s.handleList)).Methods(http.MethodGet)
	api.HandleFunc("/notes", s.authed(s.handleCreate)).Methods(http.MethodPost)
	api.HandleFunc("/notes/{id}", s.authed(s.handleUpdate)).Methods(http.MethodPut)
	api.HandleFunc("/notes/{id}", s.authed(s.handleDelete)).Methods(http.MethodDelete)

	s.Server = httptest.NewServer(router)
	return s
}

// BaseURL returns the API root, e.g. http://127.0.0.1:1234/api.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

// AddUser registers an account and returns its token.
func (s *Server) AddUser(email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(domain.User{Email: email}, password)
}

// Seed stores notes for the account identified by token, oldest first.
func (s *Server) Seed(token string, notes ...domain.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := s.tokens[token]
	s.notes[email] = append(s.notes[email], notes...)
}

// Notes returns the stored notes for token, newest first.
func (s *Server) Notes(token string) []domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newestFirst(s.notes[s.tokens[token]])
}

// Fail makes the route (e.g. "POST /notes", "PUT /notes/{id}") return f.
func (s *Server) Fail(route string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = f
}

// Requests returns every request received so far.
func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

func (s *Server) addUserLocked(u domain.User, password string) string {
	tok := uuid.NewString()
	u.ID = uuid.NewString()
	s.accounts[u.Email] = &account{user: u, password: password, token: tok}
	s.tokens[tok] = u.Email
	return tok
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + strings.TrimPrefix(routeTemplate(r), "/api")

		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		f, fail := s.failures[route]
		s.mu.Unlock()

		if fail {
			if f.Message != "" {
				writeError(w, f.Status, f.Message)
				return
			}
			w.WriteHeader(f.Status)
			w.Write([]byte(f.RawBody)) //nolint:errcheck
			return
		}
		next.ServeHTTP(w, r)
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

func (s *Server) authed(h func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		email, known := s.tokens[tok]
		s.mu.Unlock()
		if !ok || !known {
			writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		h(w, r, email)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	acct, ok := s.accounts[creds.Email]
	s.mu.Unlock()
	if !ok || acct.password != creds.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	user := acct.user
	writeJSON(w, http.StatusOK, domain.AuthResponse{Token: acct.token, User: &user})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if creds.Email == "" || creds.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[creds.Email]; exists {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}
	tok := s.addUserLocked(domain.User{Email: creds.Email, Name: creds.Name}, creds.Password)
	user := s.accounts[creds.Email].user
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, domain.AuthResponse{Token: tok, User: &user})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request, email string) {
	s.mu.Lock()
	list := newestFirst(s.notes[email])
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, email string) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	n := domain.Note{ID: uuid.NewString(), Title: in.Title, Content: in.Content}

	s.mu.Lock()
	s.notes[email] = append(s.notes[email], n)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, email string) {
	id := mux.Vars(r)["id"]
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notes[email] {
		if n.ID == id {
			n.Title, n.Content = in.Title, in.Content
			s.notes[email][i] = n
			writeJSON(w, http.StatusOK, n)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Note not found")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, email string) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.notes[email]
	for i, n := range list {
		if n.ID == id {
			s.notes[email] = append(list[:i:i], list[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Note not found")
}

func decodeInput(w http.ResponseWriter, r *http.Request) (domain.NoteInput, bool) {
	var in domain.NoteInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return in, false
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Please provide title and content")
		return in, false
	}
	return in, true
}

func newestFirst(list []domain.Note) []domain.Note {
	out := make([]domain.Note, len(list))
	for i, n := range list {
		out[len(list)-1-i] = n
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
