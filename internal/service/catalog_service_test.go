package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/strategy-hub/internal/domain"
	"github.com/spec-kit/strategy-hub/internal/repository"
	apperrors "github.com/spec-kit/strategy-hub/pkg/util"
)

type stubCatalog struct {
	items map[int64]domain.CatalogItem
	err   error
}

func (s *stubCatalog) Create(_ context.Context, item *domain.CatalogItem) error {
	if s.err != nil {
		return s.err
	}
	item.ID = int64(len(s.items) + 1)
	s.items[item.ID] = *item
	return nil
}

func (s *stubCatalog) GetByID(_ context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogItem, error) {
	item, ok := s.items[id]
	if !ok || item.Kind != kind {
		return nil, pgx.ErrNoRows
	}
	return &item, nil
}

func (s *stubCatalog) List(_ context.Context, filter repository.CatalogFilter) ([]domain.CatalogItem, error) {
	out := []domain.CatalogItem{}
	for _, item := range s.items {
		if item.Kind == filter.Kind {
			out = append(out, item)
		}
	}
	return out, s.err
}

func (s *stubCatalog) Delete(_ context.Context, kind domain.CatalogKind, id int64) error {
	if _, err := s.GetByID(context.Background(), kind, id); err != nil {
		return err
	}
	delete(s.items, id)
	return nil
}

func TestCatalogService(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(&stubCatalog{items: map[int64]domain.CatalogItem{}})

	_, err := svc.Create(ctx, CreateCatalogItemInput{Kind: "vehicle", Name: "Tank"})
	assert.Equal(t, apperrors.CodeValidationFailed, codeOf(err))

	_, err = svc.Create(ctx, CreateCatalogItemInput{Kind: domain.CatalogKindHero, Name: "  "})
	assert.Equal(t, apperrors.CodeValidationFailed, codeOf(err))

	item, err := svc.Create(ctx, CreateCatalogItemInput{Kind: domain.CatalogKindHero, Name: " Sage ", ActorID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Sage", item.Name)

	got, err := svc.Get(ctx, domain.CatalogKindHero, item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CreatedByID)

	_, err = svc.Get(ctx, domain.CatalogKindMap, item.ID)
	assert.Equal(t, apperrors.CodeNotFound, codeOf(err))

	items, err := svc.List(ctx, repository.CatalogFilter{Kind: domain.CatalogKindHero})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, svc.Delete(ctx, domain.CatalogKindHero, item.ID))
	assert.Equal(t, apperrors.CodeNotFound, codeOf(svc.Delete(ctx, domain.CatalogKindHero, item.ID)))
}

func TestCatalogService_RepositoryFailure(t *testing.T) {
	svc := NewCatalogService(&stubCatalog{items: map[int64]domain.CatalogItem{}, err: errors.New("db down")})
	_, err := svc.List(context.Background(), repository.CatalogFilter{Kind: domain.CatalogKindWeapon})
	assert.Equal(t, apperrors.CodeInternal, codeOf(err))
}
