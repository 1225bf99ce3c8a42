package auth

import (
	"crypto/sha256"
	"errors"
	"io"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/hkdf"
)

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// GuestSubjectID is the subject of guest tokens. Real subjects are positive.
const GuestSubjectID int64 = -1

// Decode failures. Callers branch on them with errors.Is.
var (
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenUnsupported      = errors.New("token unsupported")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenArgumentInvalid  = errors.New("token argument invalid")
)

const signingKeyInfo = "strategy-hub token signing key v1"

// Claims describes the JWT payload.
type Claims struct {
	SubjectID int64     `json:"uid"`
	Name      string    `json:"name,omitempty"`
	Contact   string    `json:"contact,omitempty"`
	Kind      TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// IsGuest reports whether the claims belong to the guest sentinel subject.
func (c *Claims) IsGuest() bool {
	return c.SubjectID == GuestSubjectID
}

// Codec signs and parses HS256 tokens. It holds no mutable state.
type Codec struct {
	key    []byte
	issuer string
	now    func() time.Time
	logger *zap.Logger
}

// CodecOption customizes a Codec.
type CodecOption func(*Codec)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

// WithIssuer sets the iss claim written and required by the codec.
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) {
		c.issuer = issuer
	}
}

// NewCodec derives the signing key from secret.
func NewCodec(secret string, logger *zap.Logger, opts ...CodecOption) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	key, err := deriveKey(secret)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Codec{key: key, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func deriveKey(secret string) ([]byte, error) {
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(signingKeyInfo)), key); err != nil {
		return nil, err
	}
	return key, nil
}

// Issue signs claims valid for ttl from the codec clock. IssuedAt and ExpiresAt
// are overwritten; everything else in claims is kept as given.
func (c *Codec) Issue(claims Claims, ttl time.Duration) (string, time.Time, error) {
	if claims.Kind == "" {
		return "", time.Time{}, ErrTokenArgumentInvalid
	}
	issuedAt := c.now()
	expiresAt := issuedAt.Add(ttl)

	claims.IssuedAt = jwt.NewNumericDate(issuedAt)
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	if c.issuer != "" {
		claims.Issuer = c.issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Decode verifies signature and expiry and returns the claims.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		c.logger.Warn("token decode failed", zap.String("reason", ErrTokenArgumentInvalid.Error()))
		return nil, ErrTokenArgumentInvalid
	}

	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenUnsupported
		}
		return c.key, nil
	}, opts...)
	if err != nil {
		kind := classify(err)
		c.logger.Warn("token decode failed", zap.String("reason", kind.Error()))
		return nil, kind
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		c.logger.Warn("token decode failed", zap.String("reason", ErrTokenMalformed.Error()))
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenUnverifiable), errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrTokenUnsupported
	default:
		return ErrTokenMalformed
	}
}
