package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opennotebook/internal/domain"
	"opennotebook/internal/domain/models"
)

// fakeRepo is an in-memory NotebookRepository for service tests.
type fakeRepo struct {
	notebooks map[string]*models.Notebook
	sources   map[string]*models.Source
	links     map[string][]string // notebookID -> sourceIDs
	notes     map[string][]models.Note
	nextID    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		notebooks: map[string]*models.Notebook{},
		sources:   map[string]*models.Source{},
		links:     map[string][]string{},
		notes:     map[string][]models.Note{},
	}
}

func (f *fakeRepo) List(_ context.Context, filter models.OwnershipFilter) ([]models.Notebook, error) {
	var out []models.Notebook
	for _, nb := range f.notebooks {
		if filter.Empty() {
			out = append(out, *nb)
			continue
		}
		if filter.UserID != nil && nb.UserID != nil && *filter.UserID == *nb.UserID {
			out = append(out, *nb)
			continue
		}
		if filter.TeamID != nil && nb.TeamID != nil && *filter.TeamID == *nb.TeamID {
			out = append(out, *nb)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*models.Notebook, error) {
	nb, ok := f.notebooks[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "Notebook not found"}
	}
	copied := *nb
	return &copied, nil
}

func (f *fakeRepo) Create(_ context.Context, notebook *models.Notebook) error {
	f.nextID++
	notebook.ID = fmt.Sprintf("nb-%d", f.nextID)
	stored := *notebook
	f.notebooks[notebook.ID] = &stored
	return nil
}

func (f *fakeRepo) Update(_ context.Context, notebook *models.Notebook) error {
	if _, ok := f.notebooks[notebook.ID]; !ok {
		return &domain.NotFoundError{Message: "Notebook not found"}
	}
	stored := *notebook
	f.notebooks[notebook.ID] = &stored
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.notebooks[id]; !ok {
		return &domain.NotFoundError{Message: "Notebook not found"}
	}
	delete(f.notebooks, id)
	return nil
}

func (f *fakeRepo) GetSource(_ context.Context, id string) (*models.Source, error) {
	s, ok := f.sources[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "Source not found"}
	}
	return s, nil
}

func (f *fakeRepo) LinkSource(_ context.Context, notebookID, sourceID string) error {
	for _, existing := range f.links[notebookID] {
		if existing == sourceID {
			return nil
		}
	}
	f.links[notebookID] = append(f.links[notebookID], sourceID)
	return nil
}

func (f *fakeRepo) UnlinkSource(_ context.Context, notebookID, sourceID string) error {
	linked := f.links[notebookID]
	for i, existing := range linked {
		if existing == sourceID {
			f.links[notebookID] = append(linked[:i], linked[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRepo) ListSources(_ context.Context, notebookID string) ([]models.Source, error) {
	var out []models.Source
	for _, id := range f.links[notebookID] {
		out = append(out, *f.sources[id])
	}
	return out, nil
}

func (f *fakeRepo) ListNotes(_ context.Context, notebookID string) ([]models.Note, error) {
	return f.notes[notebookID], nil
}

func newTestService() (*NotebookService, *fakeRepo) {
	repo := newFakeRepo()
	return NewNotebookService(repo, slog.New(slog.DiscardHandler)), repo
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func personalCtx(userID string) models.OwnershipContext {
	return models.OwnershipContext{UserID: strPtr(userID), CreatedBy: strPtr(userID)}
}

func personalScope(userID string) models.OwnershipFilter {
	return models.OwnershipFilter{UserID: strPtr(userID)}
}

func TestNotebookService_CreatePersonal(t *testing.T) {
	svc, repo := newTestService()

	nb, err := svc.Create(context.Background(), personalCtx("user-1"), &models.CreateNotebookRequest{
		Name:        "  Research  ",
		Description: "notes on things",
	})
	require.NoError(t, err)

	assert.Equal(t, "Research", nb.Name)
	require.NotNil(t, nb.UserID)
	assert.Equal(t, "user-1", *nb.UserID)
	assert.Nil(t, nb.TeamID)
	require.NotNil(t, nb.CreatedBy)
	assert.Equal(t, "user-1", *nb.CreatedBy)
	assert.False(t, nb.Created.IsZero())

	stored, err := repo.GetByID(context.Background(), nb.ID)
	require.NoError(t, err)
	assert.Equal(t, "Research", stored.Name)
}

func TestNotebookService_CreateTeamFromContext(t *testing.T) {
	svc, _ := newTestService()

	octx := models.OwnershipContext{TeamID: strPtr("team-9"), CreatedBy: strPtr("user-1")}
	nb, err := svc.Create(context.Background(), octx, &models.CreateNotebookRequest{Name: "Shared"})
	require.NoError(t, err)

	assert.Nil(t, nb.UserID)
	require.NotNil(t, nb.TeamID)
	assert.Equal(t, "team-9", *nb.TeamID)
	require.NotNil(t, nb.CreatedBy)
	assert.Equal(t, "user-1", *nb.CreatedBy)
}

func TestNotebookService_CreateBodyTeamOverride(t *testing.T) {
	svc, _ := newTestService()

	nb, err := svc.Create(context.Background(), personalCtx("user-1"), &models.CreateNotebookRequest{
		Name:   "Shared",
		TeamID: strPtr("team-9"),
	})
	require.NoError(t, err)

	// Body team_id wins over the personal context and nulls the user owner.
	assert.Nil(t, nb.UserID)
	require.NotNil(t, nb.TeamID)
	assert.Equal(t, "team-9", *nb.TeamID)
}

func TestNotebookService_CreateValidation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name string
		req  models.CreateNotebookRequest
	}{
		{"empty name", models.CreateNotebookRequest{Name: ""}},
		{"name too long", models.CreateNotebookRequest{Name: strings.Repeat("x", 256)}},
		{"description too long", models.CreateNotebookRequest{Name: "ok", Description: strings.Repeat("x", 2001)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), personalCtx("user-1"), &tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestNotebookService_GetAccess(t *testing.T) {
	svc, _ := newTestService()

	mine, err := svc.Create(context.Background(), personalCtx("user-1"), &models.CreateNotebookRequest{Name: "Mine"})
	require.NoError(t, err)
	theirs, err := svc.Create(context.Background(), personalCtx("user-2"), &models.CreateNotebookRequest{Name: "Theirs"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), personalScope("user-1"), mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Name)

	_, err = svc.Get(context.Background(), personalScope("user-1"), theirs.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestNotebookService_GetLegacyNotebook(t *testing.T) {
	svc, repo := newTestService()

	legacy := &models.Notebook{Name: "Old"}
	require.NoError(t, repo.Create(context.Background(), legacy))

	got, err := svc.Get(context.Background(), personalScope("user-1"), legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Old", got.Name)
}

func TestNotebookService_GetNotFound(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Get(context.Background(), personalScope("user-1"), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNotebookService_ListArchivedFilter(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	active, err := svc.Create(ctx, personalCtx("user-1"), &models.CreateNotebookRequest{Name: "Active"})
	require.NoError(t, err)
	archived, err := svc.Create(ctx, personalCtx("user-1"), &models.CreateNotebookRequest{Name: "Archived"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, personalScope("user-1"), archived.ID, &models.UpdateNotebookRequest{Archived: boolPtr(true)})
	require.NoError(t, err)

	all, err := svc.List(ctx, personalScope("user-1"), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	activeOnly, err := svc.List(ctx, personalScope("user-1"), boolPtr(false))
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, active.ID, activeOnly[0].ID)

	archivedOnly, err := svc.List(ctx, personalScope("user-1"), boolPtr(true))
	require.NoError(t, err)
	require.Len(t, archivedOnly, 1)
	assert.Equal(t, archived.ID, archivedOnly[0].ID)
}

func TestNotebookService_ListScopedByOwnership(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, personalCtx("user-1"), &models.CreateNotebookRequest{Name: "Mine"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, personalCtx("user-2"), &models.CreateNotebookRequest{Name: "Theirs"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, models.OwnershipContext{TeamID: strPtr("team-9"), CreatedBy: strPtr("user-1")},
		&models.CreateNotebookRequest{Name: "TeamNB"})
	require.NoError(t, err)

	// Personal and selected team come back together.
	scope := models.OwnershipFilter{UserID: strPtr("user-1"), TeamID: strPtr("team-9")}
	got, err := svc.List(ctx, scope, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	names := []string{got[0].Name, got[1].Name}
	assert.ElementsMatch(t, []string{"Mine", "TeamNB"}, names)
}

func TestNotebookService_UpdatePartial(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	nb, err := svc.Create(ctx, personalCtx("user-1"), &models.CreateNotebookRequest{Name: "Before", Description: "desc"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, personalScope("user-1"), nb.ID, &models.UpdateNotebookRequest{
		Name: strPtr("After"),
	})
	require.NoError(t, err)

	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "desc", updated.Description, "untouched fields survive partial update")
	assert.True(t, updated.Updated.After(nb.Updated) || updated.Updated.Equal(nb.Updated))

	// Ownership is immutable through updates.
	require.NotNil(t, updated.UserID)
	assert.Equal(t, "user-1", *updated.UserID)
}

func TestNotebookService_UpdateDeniedForOthers(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	nb, err := svc.Create(ctx, personalCtx("user-1"), &models.CreateNotebookRequest{Name: "Mine"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, personalScope("user-2"), nb.ID, &models.UpdateNotebookRequest{Name: strPtr("Hijack")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestNotebookService_Delete(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	nb, err := svc.Create(ctx, personalCtx("user-1"), &models.CreateNotebookRequest{Name: "Gone"})
	require.NoError(t, err)

	err = svc.Delete(ctx, personalScope("user-2"), nb.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = svc.Delete(ctx, personalScope("user-1"), nb.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, personalScope("user-1"), nb.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNotebookService_LinkSource(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	nb, err := svc.Create(ctx, personalCtx("user-1"), &models.CreateNotebookRequest{Name: "NB"})
	require.NoError(t, err)
	repo.sources["src-1"] = &models.Source{ID: "src-1", Title: "Paper", Created: time.Now()}

	require.NoError(t, svc.LinkSource(ctx, personalScope("user-1"), nb.ID, "src-1"))
	// Linking twice stays a single link.
	require.NoError(t, svc.LinkSource(ctx, personalScope("user-1"), nb.ID, "src-1"))

	sources, err := svc.ListSources(ctx, personalScope("user-1"), nb.ID)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "Paper", sources[0].Title)

	err = svc.LinkSource(ctx, personalScope("user-1"), nb.ID, "missing-src")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.LinkSource(ctx, personalScope("user-2"), nb.ID, "src-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestNotebookService_UnlinkSource(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	nb, err := svc.Create(ctx, personalCtx("user-1"), &models.CreateNotebookRequest{Name: "NB"})
	require.NoError(t, err)
	repo.sources["src-1"] = &models.Source{ID: "src-1", Title: "Paper"}
	require.NoError(t, svc.LinkSource(ctx, personalScope("user-1"), nb.ID, "src-1"))

	require.NoError(t, svc.UnlinkSource(ctx, personalScope("user-1"), nb.ID, "src-1"))

	sources, err := svc.ListSources(ctx, personalScope("user-1"), nb.ID)
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestNotebookService_ListNotesGated(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	nb, err := svc.Create(ctx, personalCtx("user-1"), &models.CreateNotebookRequest{Name: "NB"})
	require.NoError(t, err)
	repo.notes[nb.ID] = []models.Note{{ID: "note-1", Title: "Draft", Content: "text"}}

	notes, err := svc.ListNotes(ctx, personalScope("user-1"), nb.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Draft", notes[0].Title)

	_, err = svc.ListNotes(ctx, personalScope("user-2"), nb.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

var errBoom = errors.New("boom")

// failingRepo wraps fakeRepo to fail a single method.
type failingRepo struct {
	*fakeRepo
}

func (f *failingRepo) List(_ context.Context, _ models.OwnershipFilter) ([]models.Notebook, error) {
	return nil, errBoom
}

func TestNotebookService_ListPropagatesRepoError(t *testing.T) {
	svc := NewNotebookService(&failingRepo{newFakeRepo()}, slog.New(slog.DiscardHandler))

	_, err := svc.List(context.Background(), models.OwnershipFilter{}, nil)
	assert.ErrorIs(t, err, errBoom)
}
