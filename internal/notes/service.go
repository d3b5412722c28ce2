package notes

import (
	"context"
	"errors"
	"sync"

	"github.com/notesapp/notes/pkg/client"
	"github.com/notesapp/notes/pkg/domain"
)

// ErrNoSession is returned when an intent is issued without a token.
// Nothing is dispatched in that case.
var ErrNoSession = errors.New("not signed in")

// ErrDiscarded is returned when Reset ran while the request was in flight.
// The late result is dropped so it cannot repopulate a reset store.
var ErrDiscarded = errors.New("result discarded after reset")

// API is the subset of the notes client used by Service.
type API interface {
	ListNotes(ctx context.Context, token string) ([]domain.Note, error)
	CreateNote(ctx context.Context, token string, in domain.NoteInput) (*domain.Note, error)
	UpdateNote(ctx context.Context, token, id string, in domain.NoteInput) (*domain.Note, error)
	DeleteNote(ctx context.Context, token, id string) error
}

// Service turns user intents into Started, request, Succeeded/Failed
// sequences against a Store. Each call issues exactly one request; calls
// are not serialized against each other. Reset starts a new generation;
// requests from an earlier generation are discarded (see Scope).
type Service struct {
	api   API
	store *Store

	mu  sync.Mutex
	gen uint64
}

// NewService creates a Service that dispatches into st.
func NewService(api API, st *Store) *Service {
	return &Service{api: api, store: st}
}

// Store returns the store the service dispatches into.
func (s *Service) Store() *Store {
	return s.store
}

// Scope binds requests to the current generation. A Scope taken before a
// Reset issues nothing afterwards: its calls return ErrDiscarded without
// touching the store or the API.
type Scope struct {
	s   *Service
	gen uint64
}

// Scope returns a handle for the current generation.
func (s *Service) Scope() Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Scope{s: s, gen: s.gen}
}

// Fetch replaces the list with the server's notes.
func (s *Service) Fetch(ctx context.Context, token string) error {
	return s.Scope().Fetch(ctx, token)
}

// Create sends a new note and prepends the server's copy.
func (s *Service) Create(ctx context.Context, token string, in domain.NoteInput) error {
	return s.Scope().Create(ctx, token, in)
}

// Update replaces note id with in and, on success, leaves edit mode.
func (s *Service) Update(ctx context.Context, token, id string, in domain.NoteInput) error {
	return s.Scope().Update(ctx, token, id, in)
}

// Delete removes note id.
func (s *Service) Delete(ctx context.Context, token, id string) error {
	return s.Scope().Delete(ctx, token, id)
}

// Submit saves the form: it updates the current note when one is being
// edited, otherwise it creates a new note.
func (s *Service) Submit(ctx context.Context, token string, in domain.NoteInput) error {
	return s.Scope().Submit(ctx, token, in)
}

func (sc Scope) Fetch(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoSession
	}
	if !sc.begin(FetchStarted{}) {
		return ErrDiscarded
	}
	list, err := sc.s.api.ListNotes(ctx, token)
	if err != nil {
		return sc.finish(err, FetchFailed{Message: client.Message(err, client.MsgFetchFailed)})
	}
	return sc.finish(nil, FetchSucceeded{Notes: list})
}

func (sc Scope) Create(ctx context.Context, token string, in domain.NoteInput) error {
	if token == "" {
		return ErrNoSession
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if !sc.begin(CreateStarted{}) {
		return ErrDiscarded
	}
	created, err := sc.s.api.CreateNote(ctx, token, in)
	if err != nil {
		return sc.finish(err, CreateFailed{Message: client.Message(err, client.MsgCreateFailed)})
	}
	return sc.finish(nil, CreateSucceeded{Note: *created})
}

func (sc Scope) Update(ctx context.Context, token, id string, in domain.NoteInput) error {
	if token == "" {
		return ErrNoSession
	}
	if err := in.Validate(); err != nil {
		return err
	}
	if !sc.begin(UpdateStarted{}) {
		return ErrDiscarded
	}
	updated, err := sc.s.api.UpdateNote(ctx, token, id, in)
	if err != nil {
		return sc.finish(err, UpdateFailed{Message: client.Message(err, client.MsgUpdateFailed)})
	}
	return sc.finish(nil, UpdateSucceeded{Note: *updated}, SetCurrentNote{})
}

func (sc Scope) Delete(ctx context.Context, token, id string) error {
	if token == "" {
		return ErrNoSession
	}
	if !sc.begin(DeleteStarted{}) {
		return ErrDiscarded
	}
	if err := sc.s.api.DeleteNote(ctx, token, id); err != nil {
		return sc.finish(err, DeleteFailed{Message: client.Message(err, client.MsgDeleteFailed)})
	}
	return sc.finish(nil, DeleteSucceeded{ID: id})
}

func (sc Scope) Submit(ctx context.Context, token string, in domain.NoteInput) error {
	if cur := sc.s.store.State().CurrentNote; cur != nil {
		return sc.Update(ctx, token, cur.ID, in)
	}
	return sc.Create(ctx, token, in)
}

// begin dispatches started unless the generation has moved on.
func (sc Scope) begin(started Action) bool {
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if sc.s.gen != sc.gen {
		return false
	}
	sc.s.store.Dispatch(started)
	return true
}

// finish dispatches the outcome and returns err, or ErrDiscarded when a
// Reset happened while the request was in flight.
func (sc Scope) finish(err error, outcome ...Action) error {
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if sc.s.gen != sc.gen {
		return ErrDiscarded
	}
	for _, a := range outcome {
		sc.s.store.Dispatch(a)
	}
	return err
}

// Edit selects n for editing.
func (s *Service) Edit(n domain.Note) {
	s.store.Dispatch(SetCurrentNote{Note: &n})
}

// Cancel leaves edit mode.
func (s *Service) Cancel() {
	s.store.Dispatch(SetCurrentNote{})
}

// Reset drops all cached notes, e.g. on logout, and starts a new
// generation. Requests still in flight finish with ErrDiscarded and leave
// the store alone.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.store.Dispatch(Reset{})
}
