package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/strategy-hub/internal/observability"
)

// Authenticator establishes the request Identity from a bearer token.
// It never rejects a request: missing, invalid or revoked credentials leave
// the request anonymous and the access policy decides what that means.
type Authenticator struct {
	tokens      *Authority
	revocations RevocationStore
	roles       RoleResolver
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// AuthenticatorDependencies bundles collaborators of the Authenticator.
type AuthenticatorDependencies struct {
	Tokens      *Authority
	Revocations RevocationStore
	// Roles is optional; without it non-guest subjects only get RoleUser.
	Roles   RoleResolver
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// NewAuthenticator constructs the middleware.
func NewAuthenticator(deps AuthenticatorDependencies) *Authenticator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		tokens:      deps.Tokens,
		revocations: deps.Revocations,
		roles:       deps.Roles,
		metrics:     deps.Metrics,
		logger:      logger,
	}
}

// Handle attaches an Identity when the request carries a usable access token.
func (m *Authenticator) Handle(c *fiber.Ctx) error {
	token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
	if ok {
		if identity := m.Authenticate(c.UserContext(), token); identity != nil {
			setIdentity(c, identity)
		}
	} else {
		m.metrics.RecordAuthOutcome(observability.AuthOutcomeAnonymous)
	}
	return c.Next()
}

// Authenticate resolves token to an Identity, or nil when the caller must be
// treated as anonymous.
func (m *Authenticator) Authenticate(ctx context.Context, token string) (identity *Identity) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("authentication panicked; continuing anonymously", zap.Any("panic", r))
			m.metrics.RecordAuthOutcome(observability.AuthOutcomeFailed)
			identity = nil
		}
	}()

	if m.revocations != nil {
		revoked, err := m.revocations.IsRevoked(ctx, token)
		switch {
		case err != nil:
			m.logger.Error("revocation check failed; treating token as not revoked", zap.Error(err))
			m.metrics.RecordRevocationFailure("is_revoked")
		case revoked:
			m.logger.Info("revoked token presented")
			m.metrics.RecordAuthOutcome(observability.AuthOutcomeRevoked)
			return nil
		}
	}

	if !m.tokens.Validate(token, KindAccess) {
		m.metrics.RecordAuthOutcome(observability.AuthOutcomeInvalid)
		return nil
	}
	subjectID, ok := m.tokens.ExtractSubjectID(token)
	if !ok {
		m.metrics.RecordAuthOutcome(observability.AuthOutcomeInvalid)
		return nil
	}

	if subjectID == GuestSubjectID {
		m.metrics.RecordAuthOutcome(observability.AuthOutcomeGuest)
		return newIdentity(subjectID, nil)
	}

	var extra []Role
	if m.roles != nil {
		resolved, err := m.roles.ResolveRoles(ctx, subjectID)
		if err != nil {
			m.logger.Warn("role resolution failed; granting default role",
				zap.Int64("subject_id", subjectID), zap.Error(err))
		} else {
			extra = resolved
		}
	}
	m.metrics.RecordAuthOutcome(observability.AuthOutcomeAuthenticated)
	return newIdentity(subjectID, extra)
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
