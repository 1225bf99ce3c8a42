package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrTokenKindMismatch is returned when a token of the wrong kind is presented.
var ErrTokenKindMismatch = errors.New("token kind mismatch")

// Authority issues access and refresh tokens and validates presented ones.
// Revocation is not consulted here; see Authenticator.
type Authority struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewAuthority builds an Authority around codec.
func NewAuthority(codec *Codec, accessTTL, refreshTTL time.Duration, logger *zap.Logger) *Authority {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authority{
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        codec.now,
		logger:     logger,
	}
}

// IssueAccessToken mints an access token carrying name and contact.
func (a *Authority) IssueAccessToken(subjectID int64, name, contact string) (string, time.Time, error) {
	return a.issue(Claims{SubjectID: subjectID, Name: name, Contact: contact, Kind: KindAccess}, a.accessTTL)
}

// IssueRefreshToken mints a refresh token for subjectID.
func (a *Authority) IssueRefreshToken(subjectID int64) (string, time.Time, error) {
	return a.issue(Claims{SubjectID: subjectID, Kind: KindRefresh}, a.refreshTTL)
}

// IssueGuestToken mints an access token for the guest sentinel subject.
func (a *Authority) IssueGuestToken() (string, time.Time, error) {
	return a.issue(Claims{SubjectID: GuestSubjectID, Name: "guest", Kind: KindAccess}, a.accessTTL)
}

func (a *Authority) issue(claims Claims, ttl time.Duration) (string, time.Time, error) {
	claims.ID = uuid.NewString()
	return a.codec.Issue(claims, ttl)
}

// Decode returns the claims of a token of the given kind, or the reason it is unusable.
func (a *Authority) Decode(token string, kind TokenKind) (*Claims, error) {
	claims, err := a.codec.Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		a.logger.Warn("token kind mismatch", zap.String("want", string(kind)), zap.String("got", string(claims.Kind)))
		return nil, ErrTokenKindMismatch
	}
	if claims.ExpiresAt == nil || !a.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}

// Validate reports whether token is a well-formed, correctly signed, unexpired
// token of the given kind.
func (a *Authority) Validate(token string, kind TokenKind) bool {
	_, err := a.Decode(token, kind)
	return err == nil
}

// ExtractSubjectID returns the subject of any valid token.
func (a *Authority) ExtractSubjectID(token string) (int64, bool) {
	claims, err := a.codec.Decode(token)
	if err != nil {
		return 0, false
	}
	return claims.SubjectID, true
}

// ExtractName returns the display name embedded in a valid token.
func (a *Authority) ExtractName(token string) (string, bool) {
	claims, err := a.codec.Decode(token)
	if err != nil {
		return "", false
	}
	return claims.Name, true
}

// ExtractContact returns the contact identifier embedded in a valid token.
func (a *Authority) ExtractContact(token string) (string, bool) {
	claims, err := a.codec.Decode(token)
	if err != nil {
		return "", false
	}
	return claims.Contact, true
}

// KindOf returns the kind of any valid token.
func (a *Authority) KindOf(token string) (TokenKind, bool) {
	claims, err := a.codec.Decode(token)
	if err != nil {
		return "", false
	}
	return claims.Kind, true
}

// RemainingTTL returns how long a valid token has left to live.
func (a *Authority) RemainingTTL(token string) (time.Duration, bool) {
	claims, err := a.codec.Decode(token)
	if err != nil || claims.ExpiresAt == nil {
		return 0, false
	}
	remaining := claims.ExpiresAt.Time.Sub(a.now())
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}

// AccessTTL returns the configured access token lifetime.
func (a *Authority) AccessTTL() time.Duration {
	return a.accessTTL
}
