package models

import "time"

// Notebook is the top-level container for sources and notes. Ownership
// fields are stamped once at creation from the request's OwnershipContext
// and are immutable afterwards; no route updates them.
type Notebook struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Archived    bool      `json:"archived"`
	UserID      *string   `json:"user_id"`
	TeamID      *string   `json:"team_id"`
	CreatedBy   *string   `json:"created_by"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
	SourceCount int       `json:"source_count"`
	NoteCount   int       `json:"note_count"`
}

// Owner returns the notebook's stored ownership fields for access checks.
func (n *Notebook) Owner() ResourceOwner {
	return ResourceOwner{UserID: n.UserID, TeamID: n.TeamID}
}

// Source is an ingested reference document linked to notebooks.
type Source struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Note is a user- or assistant-written artifact attached to a notebook.
type Note struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// CreateNotebookRequest is the payload for creating a notebook. TeamID, if
// set, overrides the request's ownership context and assigns the notebook
// to that team.
type CreateNotebookRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	TeamID      *string `json:"team_id,omitempty"`
}

// UpdateNotebookRequest carries partial updates; nil fields are untouched.
type UpdateNotebookRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Archived    *bool   `json:"archived,omitempty"`
}
