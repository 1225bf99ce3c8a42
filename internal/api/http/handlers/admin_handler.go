package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/strategy-hub/internal/api/dto"
	"github.com/spec-kit/strategy-hub/internal/auth"
	"github.com/spec-kit/strategy-hub/internal/service"
	apperrors "github.com/spec-kit/strategy-hub/pkg/util"
)

// AdminHandler exposes administrative session controls.
type AdminHandler struct {
	auth *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: authService}
}

// RevokeToken handles POST /api/admin/tokens/revoke.
func (h *AdminHandler) RevokeToken(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromCtx(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RevokeTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" {
		return apperrors.NewValidationError("token required", nil)
	}

	if err := h.auth.RevokeToken(c.UserContext(), identity.SubjectID, req.Token); err != nil {
		return err
	}
	return apperrors.OK(c, http.StatusOK, nil)
}
