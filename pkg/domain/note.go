package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrEmptyField is returned when a note title or content is blank.
var ErrEmptyField = errors.New("title and content are required")

// Note is a single user note. The server assigns ID on creation.
type Note struct {
	ID        string     `json:"_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id" as the identifier key.
func (n *Note) UnmarshalJSON(data []byte) error {
	type plain Note
	var raw struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Note(raw.plain)
	if n.ID == "" {
		n.ID = raw.AltID
	}
	return nil
}

// NoteInput is the payload for creating or updating a note.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate reports ErrEmptyField if either field is blank.
func (in NoteInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return ErrEmptyField
	}
	return nil
}
