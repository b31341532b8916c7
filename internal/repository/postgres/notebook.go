package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"opennotebook/internal/domain"
	"opennotebook/internal/domain/models"
	"opennotebook/internal/domain/repositories"
)

// NotebookRepository is the Postgres implementation of notebook storage.
// Source links live in a join table; counts come from scalar subqueries so
// a listing stays a single round-trip.
type NotebookRepository struct {
	pool *pgxpool.Pool
}

// NewNotebookRepository creates a new Postgres notebook repository.
func NewNotebookRepository(pool *pgxpool.Pool) repositories.NotebookRepository {
	return &NotebookRepository{pool: pool}
}

const notebookColumns = `
	n.id, n.name, n.description, n.archived,
	n.user_id, n.team_id, n.created_by, n.created, n.updated,
	(SELECT count(*) FROM notebook_sources ns WHERE ns.notebook_id = n.id) AS source_count,
	(SELECT count(*) FROM notes t WHERE t.notebook_id = n.id) AS note_count`

// List returns notebooks matching the ownership filter, newest first. The
// predicate is the inclusive OR of the present filter fields; an empty
// filter matches everything (pre-multi-tenancy behavior).
func (r *NotebookRepository) List(ctx context.Context, filter models.OwnershipFilter) ([]models.Notebook, error) {
	query := fmt.Sprintf(`SELECT %s FROM notebooks n`, notebookColumns)

	var args []any
	switch {
	case filter.UserID != nil && filter.TeamID != nil:
		query += ` WHERE (n.user_id = $1 OR n.team_id = $2)`
		args = append(args, *filter.UserID, *filter.TeamID)
	case filter.UserID != nil:
		query += ` WHERE n.user_id = $1`
		args = append(args, *filter.UserID)
	case filter.TeamID != nil:
		query += ` WHERE n.team_id = $1`
		args = append(args, *filter.TeamID)
	}
	query += ` ORDER BY n.updated DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notebooks: %w", err)
	}
	defer rows.Close()

	notebooks := []models.Notebook{}
	for rows.Next() {
		var nb models.Notebook
		if err := rows.Scan(
			&nb.ID, &nb.Name, &nb.Description, &nb.Archived,
			&nb.UserID, &nb.TeamID, &nb.CreatedBy, &nb.Created, &nb.Updated,
			&nb.SourceCount, &nb.NoteCount,
		); err != nil {
			return nil, fmt.Errorf("scan notebook: %w", err)
		}
		notebooks = append(notebooks, nb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notebooks: %w", err)
	}

	return notebooks, nil
}

// GetByID fetches one notebook with counts, without ownership scoping.
func (r *NotebookRepository) GetByID(ctx context.Context, id string) (*models.Notebook, error) {
	query := fmt.Sprintf(`SELECT %s FROM notebooks n WHERE n.id = $1`, notebookColumns)

	var nb models.Notebook
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&nb.ID, &nb.Name, &nb.Description, &nb.Archived,
		&nb.UserID, &nb.TeamID, &nb.CreatedBy, &nb.Created, &nb.Updated,
		&nb.SourceCount, &nb.NoteCount,
	)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("notebook %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get notebook: %w", err)
	}

	return &nb, nil
}

// Create inserts a notebook, generating its id.
func (r *NotebookRepository) Create(ctx context.Context, notebook *models.Notebook) error {
	if notebook.ID == "" {
		notebook.ID = uuid.NewString()
	}

	query := `
		INSERT INTO notebooks (id, name, description, archived, user_id, team_id, created_by, created, updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		notebook.ID, notebook.Name, notebook.Description, notebook.Archived,
		notebook.UserID, notebook.TeamID, notebook.CreatedBy,
		notebook.Created, notebook.Updated,
	)
	if err != nil {
		if isPgDuplicateError(err) {
			return fmt.Errorf("notebook %s: %w", notebook.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create notebook: %w", err)
	}

	return nil
}

// Update writes the mutable fields. Ownership columns are intentionally
// not in the statement; they are set once at creation.
func (r *NotebookRepository) Update(ctx context.Context, notebook *models.Notebook) error {
	query := `
		UPDATE notebooks
		SET name = $1, description = $2, archived = $3, updated = $4
		WHERE id = $5
	`
	tag, err := r.pool.Exec(ctx, query,
		notebook.Name, notebook.Description, notebook.Archived, notebook.Updated,
		notebook.ID,
	)
	if err != nil {
		return fmt.Errorf("update notebook: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notebook %s: %w", notebook.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a notebook and its links and notes.
func (r *NotebookRepository) Delete(ctx context.Context, id string) error {
	// notebook_sources and notes cascade via foreign keys
	tag, err := r.pool.Exec(ctx, `DELETE FROM notebooks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notebook: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notebook %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// GetSource fetches a source by id.
func (r *NotebookRepository) GetSource(ctx context.Context, id string) (*models.Source, error) {
	var src models.Source
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, created, updated FROM sources WHERE id = $1`, id,
	).Scan(&src.ID, &src.Title, &src.Created, &src.Updated)
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get source: %w", err)
	}

	return &src, nil
}

// LinkSource attaches a source to a notebook. ON CONFLICT keeps it
// idempotent.
func (r *NotebookRepository) LinkSource(ctx context.Context, notebookID, sourceID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notebook_sources (notebook_id, source_id)
		VALUES ($1, $2)
		ON CONFLICT (notebook_id, source_id) DO NOTHING
	`, notebookID, sourceID)
	if err != nil {
		return fmt.Errorf("link source: %w", err)
	}
	return nil
}

// UnlinkSource removes the link if present.
func (r *NotebookRepository) UnlinkSource(ctx context.Context, notebookID, sourceID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM notebook_sources WHERE notebook_id = $1 AND source_id = $2`,
		notebookID, sourceID,
	)
	if err != nil {
		return fmt.Errorf("unlink source: %w", err)
	}
	return nil
}

// ListSources returns the sources linked to a notebook.
func (r *NotebookRepository) ListSources(ctx context.Context, notebookID string) ([]models.Source, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.title, s.created, s.updated
		FROM sources s
		JOIN notebook_sources ns ON ns.source_id = s.id
		WHERE ns.notebook_id = $1
		ORDER BY s.updated DESC
	`, notebookID)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	sources := []models.Source{}
	for rows.Next() {
		var src models.Source
		if err := rows.Scan(&src.ID, &src.Title, &src.Created, &src.Updated); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}

	return sources, nil
}

// ListNotes returns the notes attached to a notebook.
func (r *NotebookRepository) ListNotes(ctx context.Context, notebookID string) ([]models.Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, content, created, updated
		FROM notes
		WHERE notebook_id = $1
		ORDER BY updated DESC
	`, notebookID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(&note.ID, &note.Title, &note.Content, &note.Created, &note.Updated); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}
