package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"opennotebook/internal/auth"
	"opennotebook/internal/config"
	"opennotebook/internal/domain"
	"opennotebook/internal/domain/models"
	"opennotebook/internal/domain/repositories"
)

// NotebookService owns the notebook business rules: input validation,
// ownership stamping on create, and the post-fetch access decision on
// single-resource operations.
type NotebookService struct {
	repo   repositories.NotebookRepository
	logger *slog.Logger
}

// NewNotebookService creates a new notebook service.
func NewNotebookService(repo repositories.NotebookRepository, logger *slog.Logger) *NotebookService {
	return &NotebookService{
		repo:   repo,
		logger: logger,
	}
}

// List returns the notebooks visible to the caller. The ownership filter
// is applied at the storage layer (personal OR team); archived filtering
// happens here because both backends store it as a plain flag.
func (s *NotebookService) List(ctx context.Context, filter models.OwnershipFilter, archived *bool) ([]models.Notebook, error) {
	notebooks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if archived == nil {
		return notebooks, nil
	}

	filtered := make([]models.Notebook, 0, len(notebooks))
	for _, nb := range notebooks {
		if nb.Archived == *archived {
			filtered = append(filtered, nb)
		}
	}
	return filtered, nil
}

// Create stamps ownership from the request context and stores the
// notebook. An explicit team_id in the request body overrides the
// context's personal ownership, matching the create semantics clients
// already rely on.
func (s *NotebookService) Create(ctx context.Context, octx models.OwnershipContext, req *models.CreateNotebookRequest) (*models.Notebook, error) {
	if err := validateCreate(req); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	teamID := octx.TeamID
	if req.TeamID != nil && *req.TeamID != "" {
		teamID = req.TeamID
	}
	var userID *string
	if teamID == nil {
		userID = octx.UserID
	}

	now := time.Now()
	notebook := &models.Notebook{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		UserID:      userID,
		TeamID:      teamID,
		CreatedBy:   octx.CreatedBy,
		Created:     now,
		Updated:     now,
	}

	if err := s.repo.Create(ctx, notebook); err != nil {
		return nil, err
	}

	s.logger.Info("notebook created",
		"id", notebook.ID,
		"name", notebook.Name,
		"user_id", ptrOrEmpty(notebook.UserID),
		"team_id", ptrOrEmpty(notebook.TeamID),
	)

	return notebook, nil
}

// Get fetches a single notebook and applies the access decision exactly
// once, after the fetch and before returning data.
func (s *NotebookService) Get(ctx context.Context, scope models.OwnershipFilter, id string) (*models.Notebook, error) {
	notebook, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !auth.CanRead(notebook.Owner(), scope) {
		return nil, &domain.ForbiddenError{Message: "Access denied"}
	}

	return notebook, nil
}

// Update applies a partial update. The same ownership check as Get gates
// it; ownership fields themselves are immutable and never touched here.
func (s *NotebookService) Update(ctx context.Context, scope models.OwnershipFilter, id string, req *models.UpdateNotebookRequest) (*models.Notebook, error) {
	if err := validateUpdate(req); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	notebook, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		notebook.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		notebook.Description = *req.Description
	}
	if req.Archived != nil {
		notebook.Archived = *req.Archived
	}
	notebook.Updated = time.Now()

	if err := s.repo.Update(ctx, notebook); err != nil {
		return nil, err
	}

	s.logger.Info("notebook updated", "id", notebook.ID)

	return notebook, nil
}

// Delete removes a notebook the caller can access.
func (s *NotebookService) Delete(ctx context.Context, scope models.OwnershipFilter, id string) error {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("notebook deleted", "id", id)
	return nil
}

// LinkSource attaches an existing source to a notebook. Idempotent.
func (s *NotebookService) LinkSource(ctx context.Context, scope models.OwnershipFilter, notebookID, sourceID string) error {
	if _, err := s.Get(ctx, scope, notebookID); err != nil {
		return err
	}
	if _, err := s.repo.GetSource(ctx, sourceID); err != nil {
		return err
	}

	if err := s.repo.LinkSource(ctx, notebookID, sourceID); err != nil {
		return fmt.Errorf("link source %s to notebook %s: %w", sourceID, notebookID, err)
	}
	return nil
}

// UnlinkSource removes a source/notebook link.
func (s *NotebookService) UnlinkSource(ctx context.Context, scope models.OwnershipFilter, notebookID, sourceID string) error {
	if _, err := s.Get(ctx, scope, notebookID); err != nil {
		return err
	}

	if err := s.repo.UnlinkSource(ctx, notebookID, sourceID); err != nil {
		return fmt.Errorf("unlink source %s from notebook %s: %w", sourceID, notebookID, err)
	}
	return nil
}

// ListSources returns the sources linked to a notebook the caller can
// access.
func (s *NotebookService) ListSources(ctx context.Context, scope models.OwnershipFilter, notebookID string) ([]models.Source, error) {
	if _, err := s.Get(ctx, scope, notebookID); err != nil {
		return nil, err
	}
	return s.repo.ListSources(ctx, notebookID)
}

// ListNotes returns the notes attached to a notebook the caller can
// access.
func (s *NotebookService) ListNotes(ctx context.Context, scope models.OwnershipFilter, notebookID string) ([]models.Note, error) {
	if _, err := s.Get(ctx, scope, notebookID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, notebookID)
}

func validateCreate(req *models.CreateNotebookRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxNotebookNameLength),
		),
		validation.Field(&req.Description,
			validation.Length(0, config.MaxNotebookDescriptionLength),
		),
	)
}

func validateUpdate(req *models.UpdateNotebookRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.NilOrNotEmpty,
			validation.Length(1, config.MaxNotebookNameLength),
		),
		validation.Field(&req.Description,
			validation.Length(0, config.MaxNotebookDescriptionLength),
		),
	)
}

func ptrOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
