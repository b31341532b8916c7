package repositories

import (
	"context"

	"opennotebook/internal/domain/models"
)

// NotebookRepository abstracts notebook storage. Two implementations
// exist: SurrealDB (the system's native store) and Postgres.
//
// Ownership scoping is split between two call shapes on purpose:
//   - List applies the caller's OwnershipFilter as a storage-level OR
//     predicate (personal OR team). This is a superset-safe optimization.
//   - GetByID fetches unscoped; the service applies the access decision
//     after the fetch. The two must stay consistent: a row the filter
//     would return must always pass the post-fetch check for the same
//     caller.
type NotebookRepository interface {
	// List returns notebooks matching the ownership filter, newest first.
	// An empty filter matches every notebook (legacy deployments).
	List(ctx context.Context, filter models.OwnershipFilter) ([]models.Notebook, error)

	// GetByID fetches one notebook with its source/note counts, without
	// ownership scoping. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*models.Notebook, error)

	Create(ctx context.Context, notebook *models.Notebook) error
	Update(ctx context.Context, notebook *models.Notebook) error
	Delete(ctx context.Context, id string) error

	// GetSource fetches a source by id. Returns domain.ErrNotFound if absent.
	GetSource(ctx context.Context, id string) (*models.Source, error)

	// LinkSource attaches an existing source to a notebook. Idempotent:
	// linking twice leaves a single link.
	LinkSource(ctx context.Context, notebookID, sourceID string) error

	// UnlinkSource removes the source/notebook link if present.
	UnlinkSource(ctx context.Context, notebookID, sourceID string) error

	// ListSources returns the sources linked to a notebook.
	ListSources(ctx context.Context, notebookID string) ([]models.Source, error)

	// ListNotes returns the notes attached to a notebook.
	ListNotes(ctx context.Context, notebookID string) ([]models.Note, error)
}
