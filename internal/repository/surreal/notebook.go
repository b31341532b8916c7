package surreal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	surrealdb "github.com/surrealdb/surrealdb.go"
	sdbmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"opennotebook/internal/domain"
	"opennotebook/internal/domain/models"
	"opennotebook/internal/domain/repositories"
)

// Table and edge names. Sources link to notebooks through "reference"
// edges and notes through "artifact" edges, so notebook counts are plain
// graph-degree lookups.
const (
	notebookTable = "notebook"
	sourceTable   = "source"
)

// NotebookRepository is the SurrealDB implementation of notebook storage,
// the system's native backend.
type NotebookRepository struct {
	db *surrealdb.DB
}

// NewNotebookRepository creates a new SurrealDB notebook repository.
func NewNotebookRepository(db *surrealdb.DB) repositories.NotebookRepository {
	return &NotebookRepository{db: db}
}

// notebookRecord is the stored shape of a notebook. Counts are produced
// by the read queries, never stored.
type notebookRecord struct {
	ID          *sdbmodels.RecordID `json:"id,omitempty"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Archived    bool                `json:"archived"`
	UserID      *string             `json:"user_id,omitempty"`
	TeamID      *string             `json:"team_id,omitempty"`
	CreatedBy   *string             `json:"created_by,omitempty"`
	Created     time.Time           `json:"created"`
	Updated     time.Time           `json:"updated"`
	SourceCount int                 `json:"source_count,omitempty"`
	NoteCount   int                 `json:"note_count,omitempty"`
}

type sourceRecord struct {
	ID      *sdbmodels.RecordID `json:"id,omitempty"`
	Title   string              `json:"title"`
	Created time.Time           `json:"created"`
	Updated time.Time           `json:"updated"`
}

type noteRecord struct {
	ID      *sdbmodels.RecordID `json:"id,omitempty"`
	Title   string              `json:"title"`
	Content string              `json:"content"`
	Created time.Time           `json:"created"`
	Updated time.Time           `json:"updated"`
}

// recordKey accepts both "notebook:key" and bare "key" id forms and
// returns the bare key. Clients of the old API send prefixed ids.
func recordKey(table, id string) string {
	return strings.TrimPrefix(id, table+":")
}

func recordID(table, id string) sdbmodels.RecordID {
	return sdbmodels.RecordID{Table: table, ID: recordKey(table, id)}
}

func keyString(rid *sdbmodels.RecordID) string {
	if rid == nil {
		return ""
	}
	if s, ok := rid.ID.(string); ok {
		return s
	}
	return fmt.Sprint(rid.ID)
}

// isNotFound recognizes the SDK's empty-result errors on single-record
// operations.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Expected a single or multiple results but got 0") ||
		strings.Contains(msg, "cannot unmarshal array into Go value")
}

const notebookProjection = `*,
	count(<-reference.in) AS source_count,
	count(<-artifact.in) AS note_count`

func (r *NotebookRepository) toNotebook(rec notebookRecord) models.Notebook {
	return models.Notebook{
		ID:          keyString(rec.ID),
		Name:        rec.Name,
		Description: rec.Description,
		Archived:    rec.Archived,
		UserID:      rec.UserID,
		TeamID:      rec.TeamID,
		CreatedBy:   rec.CreatedBy,
		Created:     rec.Created,
		Updated:     rec.Updated,
		SourceCount: rec.SourceCount,
		NoteCount:   rec.NoteCount,
	}
}

// List returns notebooks matching the ownership filter, newest first. The
// filter becomes an inclusive OR predicate; with no filter fields the
// query is unscoped (legacy deployments without auth).
func (r *NotebookRepository) List(ctx context.Context, filter models.OwnershipFilter) ([]models.Notebook, error) {
	var conditions []string
	params := map[string]any{}
	if filter.UserID != nil {
		conditions = append(conditions, "user_id = $user_id")
		params["user_id"] = *filter.UserID
	}
	if filter.TeamID != nil {
		conditions = append(conditions, "team_id = $team_id")
		params["team_id"] = *filter.TeamID
	}

	where := ""
	if len(conditions) > 0 {
		where = fmt.Sprintf("WHERE (%s)", strings.Join(conditions, " OR "))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY updated DESC`,
		notebookProjection, notebookTable, where)

	result, err := surrealdb.Query[[]notebookRecord](ctx, r.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("list notebooks: %w", err)
	}

	notebooks := []models.Notebook{}
	if result != nil && len(*result) > 0 {
		for _, rec := range (*result)[0].Result {
			notebooks = append(notebooks, r.toNotebook(rec))
		}
	}
	return notebooks, nil
}

// GetByID fetches one notebook with its counts, without ownership
// scoping; the caller applies the access decision afterwards.
func (r *NotebookRepository) GetByID(ctx context.Context, id string) (*models.Notebook, error) {
	query := fmt.Sprintf(`SELECT %s FROM $notebook`, notebookProjection)
	params := map[string]any{"notebook": recordID(notebookTable, id)}

	result, err := surrealdb.Query[[]notebookRecord](ctx, r.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("get notebook: %w", err)
	}

	if result == nil || len(*result) == 0 || len((*result)[0].Result) == 0 {
		return nil, fmt.Errorf("notebook %s: %w", id, domain.ErrNotFound)
	}

	nb := r.toNotebook((*result)[0].Result[0])
	return &nb, nil
}

// Create stores a new notebook, generating its key.
func (r *NotebookRepository) Create(ctx context.Context, notebook *models.Notebook) error {
	if notebook.ID == "" {
		notebook.ID = uuid.NewString()
	}

	rid := recordID(notebookTable, notebook.ID)
	rec := notebookRecord{
		ID:          &rid,
		Name:        notebook.Name,
		Description: notebook.Description,
		Archived:    notebook.Archived,
		UserID:      notebook.UserID,
		TeamID:      notebook.TeamID,
		CreatedBy:   notebook.CreatedBy,
		Created:     notebook.Created,
		Updated:     notebook.Updated,
	}

	if _, err := surrealdb.Create[notebookRecord](ctx, r.db, notebookTable, rec); err != nil {
		return fmt.Errorf("create notebook: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a notebook. Ownership fields are
// carried through unchanged from the fetched record.
func (r *NotebookRepository) Update(ctx context.Context, notebook *models.Notebook) error {
	rid := recordID(notebookTable, notebook.ID)
	rec := notebookRecord{
		ID:          &rid,
		Name:        notebook.Name,
		Description: notebook.Description,
		Archived:    notebook.Archived,
		UserID:      notebook.UserID,
		TeamID:      notebook.TeamID,
		CreatedBy:   notebook.CreatedBy,
		Created:     notebook.Created,
		Updated:     notebook.Updated,
	}

	if _, err := surrealdb.Update[notebookRecord](ctx, r.db, rid, rec); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("notebook %s: %w", notebook.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update notebook: %w", err)
	}
	return nil
}

// Delete removes a notebook. Its reference and artifact edges go with it.
func (r *NotebookRepository) Delete(ctx context.Context, id string) error {
	rid := recordID(notebookTable, id)
	if _, err := surrealdb.Delete[notebookRecord](ctx, r.db, rid); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("notebook %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete notebook: %w", err)
	}
	return nil
}

// GetSource fetches a source by id.
func (r *NotebookRepository) GetSource(ctx context.Context, id string) (*models.Source, error) {
	rid := recordID(sourceTable, id)
	rec, err := surrealdb.Select[sourceRecord](ctx, r.db, rid)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get source: %w", err)
	}
	if rec == nil || rec.ID == nil {
		return nil, fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}

	return &models.Source{
		ID:      keyString(rec.ID),
		Title:   rec.Title,
		Created: rec.Created,
		Updated: rec.Updated,
	}, nil
}

// LinkSource creates the source->reference->notebook edge. A pre-check
// keeps the operation idempotent: relating twice would duplicate the edge
// and inflate counts.
func (r *NotebookRepository) LinkSource(ctx context.Context, notebookID, sourceID string) error {
	params := map[string]any{
		"notebook": recordID(notebookTable, notebookID),
		"source":   recordID(sourceTable, sourceID),
	}

	existing, err := surrealdb.Query[[]sdbmodels.RecordID](ctx, r.db,
		`SELECT VALUE id FROM reference WHERE in = $source AND out = $notebook`, params)
	if err != nil {
		return fmt.Errorf("check source link: %w", err)
	}
	if existing != nil && len(*existing) > 0 && len((*existing)[0].Result) > 0 {
		return nil
	}

	if _, err := surrealdb.Query[any](ctx, r.db,
		`RELATE $source->reference->$notebook`, params); err != nil {
		return fmt.Errorf("relate source to notebook: %w", err)
	}
	return nil
}

// UnlinkSource deletes the source/notebook edge if present.
func (r *NotebookRepository) UnlinkSource(ctx context.Context, notebookID, sourceID string) error {
	params := map[string]any{
		"notebook": recordID(notebookTable, notebookID),
		"source":   recordID(sourceTable, sourceID),
	}

	if _, err := surrealdb.Query[any](ctx, r.db,
		`DELETE FROM reference WHERE in = $source AND out = $notebook`, params); err != nil {
		return fmt.Errorf("delete source link: %w", err)
	}
	return nil
}

// ListSources walks the reference edges back to their sources.
func (r *NotebookRepository) ListSources(ctx context.Context, notebookID string) ([]models.Source, error) {
	query := `SELECT <-reference<-source.* AS sources FROM $notebook`
	params := map[string]any{"notebook": recordID(notebookTable, notebookID)}

	type row struct {
		Sources []sourceRecord `json:"sources"`
	}
	result, err := surrealdb.Query[[]row](ctx, r.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	sources := []models.Source{}
	if result != nil && len(*result) > 0 && len((*result)[0].Result) > 0 {
		for _, rec := range (*result)[0].Result[0].Sources {
			sources = append(sources, models.Source{
				ID:      keyString(rec.ID),
				Title:   rec.Title,
				Created: rec.Created,
				Updated: rec.Updated,
			})
		}
	}
	return sources, nil
}

// ListNotes walks the artifact edges back to their notes.
func (r *NotebookRepository) ListNotes(ctx context.Context, notebookID string) ([]models.Note, error) {
	query := `SELECT <-artifact<-note.* AS notes FROM $notebook`
	params := map[string]any{"notebook": recordID(notebookTable, notebookID)}

	type row struct {
		Notes []noteRecord `json:"notes"`
	}
	result, err := surrealdb.Query[[]row](ctx, r.db, query, params)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	notes := []models.Note{}
	if result != nil && len(*result) > 0 && len((*result)[0].Result) > 0 {
		for _, rec := range (*result)[0].Result[0].Notes {
			notes = append(notes, models.Note{
				ID:      keyString(rec.ID),
				Title:   rec.Title,
				Content: rec.Content,
				Created: rec.Created,
				Updated: rec.Updated,
			})
		}
	}
	return notes, nil
}
