package dto

import (
	"time"

	"github.com/spec-kit/strategy-hub/internal/domain"
)

// CreateCatalogItemRequest payload for admin content creation.
type CreateCatalogItemRequest struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
}

// CatalogItemResponse is the public view of a catalog item.
type CatalogItemResponse struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Summary   string    `json:"summary"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCatalogItemResponse maps an item; withBody controls inclusion of the long text.
func NewCatalogItemResponse(item *domain.CatalogItem, withBody bool) CatalogItemResponse {
	resp := CatalogItemResponse{
		ID:        item.ID,
		Kind:      string(item.Kind),
		Name:      item.Name,
		Summary:   item.Summary,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if withBody {
		resp.Body = item.Body
	}
	return resp
}
