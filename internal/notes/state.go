// Package notes holds the in-memory notes collection and the transitions
// that drive it through fetch, create, update and delete requests.
//
// Each operation has a Started, Succeeded and Failed action. Started sets
// Loading and clears Error; Succeeded applies the server result to the
// list; Failed records the message and leaves Notes and CurrentNote alone.
// Reduce is total: any action applied to any state yields a state.
package notes

import (
	"github.com/notesapp/notes/internal/store"
	"github.com/notesapp/notes/pkg/domain"
)

// State is the notes collection as seen by the view.
type State struct {
	Notes       []domain.Note // newest first
	Loading     bool
	Error       string // "" when there is no error
	CurrentNote *domain.Note
}

// Editing reports whether a note is selected for editing.
func (s State) Editing() bool {
	return s.CurrentNote != nil
}

// Action is a notes transition.
type Action interface {
	notesAction()
}

type (
	FetchStarted   struct{}
	FetchSucceeded struct{ Notes []domain.Note }
	FetchFailed    struct{ Message string }

	CreateStarted   struct{}
	CreateSucceeded struct{ Note domain.Note }
	CreateFailed    struct{ Message string }

	UpdateStarted   struct{}
	UpdateSucceeded struct{ Note domain.Note }
	UpdateFailed    struct{ Message string }

	DeleteStarted   struct{}
	DeleteSucceeded struct{ ID string }
	DeleteFailed    struct{ Message string }

	// SetCurrentNote enters (non-nil) or leaves (nil) edit mode.
	SetCurrentNote struct{ Note *domain.Note }

	// Reset returns to the initial state, e.g. after logout.
	Reset struct{}
)

func (FetchStarted) notesAction()    {}
func (FetchSucceeded) notesAction()  {}
func (FetchFailed) notesAction()     {}
func (CreateStarted) notesAction()   {}
func (CreateSucceeded) notesAction() {}
func (CreateFailed) notesAction()    {}
func (UpdateStarted) notesAction()   {}
func (UpdateSucceeded) notesAction() {}
func (UpdateFailed) notesAction()    {}
func (DeleteStarted) notesAction()   {}
func (DeleteSucceeded) notesAction() {}
func (DeleteFailed) notesAction()    {}
func (SetCurrentNote) notesAction()  {}
func (Reset) notesAction()           {}

// Store is the notes container.
type Store = store.Store[State, Action]

// NewStore returns a store holding an empty collection.
func NewStore() *Store {
	return store.New(State{}, Reduce)
}

// Reduce applies a notes transition. It never mutates s.Notes in place.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case FetchStarted, CreateStarted, UpdateStarted, DeleteStarted:
		s.Loading = true
		s.Error = ""

	case FetchFailed:
		return failed(s, a.Message)
	case CreateFailed:
		return failed(s, a.Message)
	case UpdateFailed:
		return failed(s, a.Message)
	case DeleteFailed:
		return failed(s, a.Message)

	case FetchSucceeded:
		s.Loading = false
		s.Notes = append([]domain.Note{}, a.Notes...)

	case CreateSucceeded:
		s.Loading = false
		list := make([]domain.Note, 0, len(s.Notes)+1)
		list = append(list, a.Note)
		s.Notes = append(list, s.Notes...)

	case UpdateSucceeded:
		s.Loading = false
		s.Notes = replaceByID(s.Notes, a.Note)

	case DeleteSucceeded:
		s.Loading = false
		s.Notes = removeByID(s.Notes, a.ID)

	case SetCurrentNote:
		if a.Note == nil {
			s.CurrentNote = nil
		} else {
			n := *a.Note
			s.CurrentNote = &n
		}

	case Reset:
		return State{}
	}
	return s
}

func failed(s State, msg string) State {
	s.Loading = false
	s.Error = msg
	return s
}

// replaceByID returns a copy of list with the element whose ID matches n
// replaced. An unknown ID leaves the list as it was.
func replaceByID(list []domain.Note, n domain.Note) []domain.Note {
	idx := indexOf(list, n.ID)
	if idx < 0 {
		return list
	}
	out := append([]domain.Note{}, list...)
	out[idx] = n
	return out
}

func removeByID(list []domain.Note, id string) []domain.Note {
	if indexOf(list, id) < 0 {
		return list
	}
	out := make([]domain.Note, 0, len(list)-1)
	for _, n := range list {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

func indexOf(list []domain.Note, id string) int {
	for i, n := range list {
		if n.ID == id {
			return i
		}
	}
	return -1
}
