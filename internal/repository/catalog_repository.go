package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/strategy-hub/internal/domain"
)

// CatalogFilter defines query params for catalog listing.
type CatalogFilter struct {
	Kind   domain.CatalogKind
	Search string
	Limit  int
	Offset int
}

// CatalogRepository handles persistence for catalog items.
type CatalogRepository interface {
	Create(ctx context.Context, item *domain.CatalogItem) error
	GetByID(ctx context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogItem, error)
	List(ctx context.Context, filter CatalogFilter) ([]domain.CatalogItem, error)
	Delete(ctx context.Context, kind domain.CatalogKind, id int64) error
}

type catalogRepository struct {
	db DBTX
}

// NewCatalogRepository instantiates the repository.
func NewCatalogRepository(db DBTX) CatalogRepository {
	return &catalogRepository{db: db}
}

// likeEscaper makes LIKE metacharacters in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

const catalogColumns = `id, kind, name, summary, body, created_by, created_at, updated_at`

func (r *catalogRepository) Create(ctx context.Context, item *domain.CatalogItem) error {
	const query = `
        INSERT INTO catalog_items (kind, name, summary, body, created_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		item.Kind,
		item.Name,
		item.Summary,
		item.Body,
		item.CreatedByID,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *catalogRepository) GetByID(ctx context.Context, kind domain.CatalogKind, id int64) (*domain.CatalogItem, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_items WHERE kind=$1 AND id=$2`

	var item domain.CatalogItem
	if err := r.db.QueryRow(ctx, query, kind, id).Scan(
		&item.ID,
		&item.Kind,
		&item.Name,
		&item.Summary,
		&item.Body,
		&item.CreatedByID,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *catalogRepository) List(ctx context.Context, filter CatalogFilter) ([]domain.CatalogItem, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_items WHERE kind=$1`
	args := []any{filter.Kind}

	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		query += ` AND name ILIKE $2 ESCAPE '\'`
	}
	query += " ORDER BY name ASC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	if filter.Search != "" {
		query += " LIMIT $3 OFFSET $4"
	} else {
		query += " LIMIT $2 OFFSET $3"
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.CatalogItem{}
	for rows.Next() {
		var item domain.CatalogItem
		if err := rows.Scan(
			&item.ID,
			&item.Kind,
			&item.Name,
			&item.Summary,
			&item.Body,
			&item.CreatedByID,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *catalogRepository) Delete(ctx context.Context, kind domain.CatalogKind, id int64) error {
	const query = `DELETE FROM catalog_items WHERE kind=$1 AND id=$2`

	cmd, err := r.db.Exec(ctx, query, kind, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
