package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/strategy-hub/internal/domain"
	"github.com/spec-kit/strategy-hub/internal/repository"
	apperrors "github.com/spec-kit/strategy-hub/pkg/util"
)

// CatalogService exposes the strategy content catalog.
type CatalogService struct {
	items repository.CatalogRepository
}

// NewCatalogService creates the service.
func NewCatalogService(items repository.CatalogRepository) *CatalogService {
	return &CatalogService{items: items}
}

// CreateCatalogItemInput carries fields for a new item.
type CreateCatalogItemInput struct {
	Kind    domain.CatalogKind
	Name    string
	Summary string
	Body    string
	ActorID int64
}

// List returns items of one kind.
func (s *CatalogService) List(ctx context.Context, filter repository.CatalogFilter) ([]domain.CatalogItem, error) {
	if !filter.Kind.Valid() {
		return nil, unknownKind(filter.Kind)
	}
	items, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return items, nil
}

// Get returns a single item.
func (s *CatalogService) Get(ctx context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogItem, error) {
	if !kind.Valid() {
		return nil, unknownKind(kind)
	}
	item, err := s.items.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound(string(kind), map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return item, nil
}

// Create stores a new item.
func (s *CatalogService) Create(ctx context.Context, input CreateCatalogItemInput) (*domain.CatalogItem, error) {
	if !input.Kind.Valid() {
		return nil, unknownKind(input.Kind)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	item := &domain.CatalogItem{
		Kind:        input.Kind,
		Name:        name,
		Summary:     strings.TrimSpace(input.Summary),
		Body:        input.Body,
		CreatedByID: input.ActorID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return item, nil
}

// Delete removes an item.
func (s *CatalogService) Delete(ctx context.Context, kind domain.CatalogKind, id int64) error {
	if !kind.Valid() {
		return unknownKind(kind)
	}
	if err := s.items.Delete(ctx, kind, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound(string(kind), map[string]any{"id": id})
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

func unknownKind(kind domain.CatalogKind) error {
	return apperrors.NewValidationError("unknown catalog kind", map[string]any{"kind": string(kind)})
}
