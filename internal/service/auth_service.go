package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/strategy-hub/internal/auth"
	"github.com/spec-kit/strategy-hub/internal/config"
	"github.com/spec-kit/strategy-hub/internal/domain"
	"github.com/spec-kit/strategy-hub/internal/events"
	"github.com/spec-kit/strategy-hub/internal/observability"
	"github.com/spec-kit/strategy-hub/internal/repository"
	apperrors "github.com/spec-kit/strategy-hub/pkg/util"
)

// AuthService coordinates registration, sign-in and session revocation.
type AuthService struct {
	users        repository.UserRepository
	tokens       *auth.Authority
	revocations  auth.RevocationStore
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
	bcryptCost   int
	guestEnabled bool
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	Tokens      *auth.Authority
	Revocations auth.RevocationStore
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher(logger)
	}
	return &AuthService{
		users:        deps.UserRepo,
		tokens:       deps.Tokens,
		revocations:  deps.Revocations,
		dispatcher:   dispatcher,
		metrics:      deps.Metrics,
		logger:       logger,
		bcryptCost:   cfg.BcryptCost,
		guestEnabled: cfg.GuestAccessEnabled,
	}
}

// Register creates a new account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, *domain.TokenPair, error) {
	email = normalizeEmail(email)

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Roles:        []string{string(auth.RoleUser)},
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, nil, apperrors.NewInternalError(err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	s.publish(ctx, events.New(events.EventUserRegistered, user.ID, events.UserRegisteredPayload{Name: user.Name, Email: user.Email}))
	return user, pair, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.Active() {
		return nil, nil, apperrors.NewForbidden("account suspended")
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	s.publish(ctx, events.New(events.EventUserLoggedIn, user.ID, nil))
	return user, pair, nil
}

// EnterAsGuest issues a guest access token. Guests get no refresh token.
func (s *AuthService) EnterAsGuest(ctx context.Context) (*domain.TokenPair, error) {
	if !s.guestEnabled {
		return nil, apperrors.NewForbidden("guest access disabled")
	}
	token, exp, err := s.tokens.IssueGuestToken()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.publish(ctx, events.New(events.EventGuestEntered, auth.GuestSubjectID, nil))
	return &domain.TokenPair{AccessToken: token, AccessExpiresAt: exp}, nil
}

// Refresh mints a new access token from a valid, unrevoked refresh token.
// Name and contact come from the user store, not from the refresh token,
// so profile changes and suspensions since issuance take effect. The
// refresh token itself is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if s.isRevoked(ctx, refreshToken) {
		return nil, apperrors.NewUnauthorized(auth.ErrTokenRevoked.Error())
	}
	claims, err := s.tokens.Decode(refreshToken, auth.KindRefresh)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid refresh token")
	}
	if claims.IsGuest() {
		return nil, apperrors.NewUnauthorized("guest sessions cannot be refreshed")
	}

	user, err := s.users.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("account no longer exists")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !user.Active() {
		return nil, apperrors.NewForbidden("account suspended")
	}

	access, accessExp, err := s.tokens.IssueAccessToken(user.ID, user.Name, user.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the presented access token and, when given, the refresh
// token of the same subject.
func (s *AuthService) Logout(ctx context.Context, subjectID int64, accessToken, refreshToken string) error {
	if err := s.revoke(ctx, accessToken, "logout", subjectID); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.Decode(refreshToken, auth.KindRefresh)
	if err != nil {
		return nil
	}
	if claims.SubjectID != subjectID {
		return apperrors.NewForbidden("refresh token belongs to another subject")
	}
	return s.revoke(ctx, refreshToken, "logout", subjectID)
}

// RevokeToken invalidates any still-valid token on behalf of an administrator.
func (s *AuthService) RevokeToken(ctx context.Context, actorID int64, token string) error {
	if _, ok := s.tokens.RemainingTTL(token); !ok {
		return apperrors.NewValidationError("token is not valid", nil)
	}
	return s.revoke(ctx, token, "admin", actorID)
}

// Profile returns the account of subjectID.
func (s *AuthService) Profile(ctx context.Context, subjectID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func (s *AuthService) revoke(ctx context.Context, token, reason string, actorID int64) error {
	remaining, ok := s.tokens.RemainingTTL(token)
	if !ok {
		return nil
	}
	subjectID, _ := s.tokens.ExtractSubjectID(token)
	if err := s.revocations.Revoke(ctx, token, remaining); err != nil {
		s.logger.Error("token revocation failed", zap.String("reason", reason), zap.Error(err))
		return apperrors.NewServiceUnavailable("session store unavailable", err)
	}

	kind, _ := s.tokens.KindOf(token)
	s.publish(ctx, events.New(events.EventTokenRevoked, subjectID, events.TokenRevokedPayload{
		Reason:    reason,
		Kind:      string(kind),
		Remaining: remaining,
		ActorID:   actorID,
	}))
	return nil
}

// isRevoked applies the fail-open policy: store errors count as not revoked.
func (s *AuthService) isRevoked(ctx context.Context, token string) bool {
	revoked, err := s.revocations.IsRevoked(ctx, token)
	if err != nil {
		s.logger.Error("revocation check failed; treating token as not revoked", zap.Error(err))
		s.metrics.RecordRevocationFailure("is_revoked")
		return false
	}
	return revoked
}

func (s *AuthService) issuePair(user *domain.User) (*domain.TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccessToken(user.ID, user.Name, user.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	refresh, refreshExp, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	_ = s.dispatcher.Publish(ctx, event)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
