package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/strategy-hub/internal/api/dto"
	"github.com/spec-kit/strategy-hub/internal/auth"
	"github.com/spec-kit/strategy-hub/internal/domain"
	"github.com/spec-kit/strategy-hub/internal/repository"
	"github.com/spec-kit/strategy-hub/internal/service"
	apperrors "github.com/spec-kit/strategy-hub/pkg/util"
)

// CatalogHandler exposes the content catalog.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalogService}
}

// List handles GET /api/catalog/:kind.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	filter := repository.CatalogFilter{
		Kind:   domain.CatalogKind(c.Params("kind")),
		Search: c.Query("q"),
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	items, err := h.catalog.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	out := make([]dto.CatalogItemResponse, 0, len(items))
	for i := range items {
		out = append(out, dto.NewCatalogItemResponse(&items[i], false))
	}
	return apperrors.OK(c, http.StatusOK, out)
}

// Get handles GET /api/catalog/:kind/:id.
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	item, err := h.catalog.Get(c.UserContext(), domain.CatalogKind(c.Params("kind")), int64(id))
	if err != nil {
		return err
	}
	return apperrors.OK(c, http.StatusOK, dto.NewCatalogItemResponse(item, true))
}

// Create handles POST /api/catalog/:kind.
func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromCtx(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCatalogItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	item, err := h.catalog.Create(c.UserContext(), service.CreateCatalogItemInput{
		Kind:    domain.CatalogKind(c.Params("kind")),
		Name:    req.Name,
		Summary: req.Summary,
		Body:    req.Body,
		ActorID: identity.SubjectID,
	})
	if err != nil {
		return err
	}
	return apperrors.OK(c, http.StatusCreated, dto.NewCatalogItemResponse(item, true))
}

// Delete handles DELETE /api/catalog/:kind/:id.
func (h *CatalogHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid id", nil)
	}
	if err := h.catalog.Delete(c.UserContext(), domain.CatalogKind(c.Params("kind")), int64(id)); err != nil {
		return err
	}
	return apperrors.OK(c, http.StatusOK, nil)
}
