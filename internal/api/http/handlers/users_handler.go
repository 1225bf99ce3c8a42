package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/strategy-hub/internal/api/dto"
	"github.com/spec-kit/strategy-hub/internal/auth"
	"github.com/spec-kit/strategy-hub/internal/service"
	apperrors "github.com/spec-kit/strategy-hub/pkg/util"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromCtx(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	user, err := h.auth.Profile(c.UserContext(), identity.SubjectID)
	if err != nil {
		return err
	}
	return apperrors.OK(c, http.StatusOK, dto.NewUserResponse(user))
}
