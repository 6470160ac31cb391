package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/necatisahhin/zeroAiBackend/internal/ids"
)

type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type TokenConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Claims struct {
	UserID string    `json:"userId"`
	Type   TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token together with the instant it stops being valid.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenCodec signs and verifies HS256 tokens. Access and refresh tokens share
// the secret and are told apart by the typ claim.
type TokenCodec struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenCodec(cfg TokenConfig) *TokenCodec {
	return &TokenCodec{cfg: cfg, now: time.Now}
}

// WithClock returns a copy of the codec that reads time from now.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *TokenCodec) IssueAccess(userID string) (IssuedToken, error) {
	return c.Sign(userID, TokenAccess, c.cfg.AccessTTL)
}

func (c *TokenCodec) IssueRefresh(userID string) (IssuedToken, error) {
	return c.Sign(userID, TokenRefresh, c.cfg.RefreshTTL)
}

func (c *TokenCodec) Sign(userID string, kind TokenKind, ttl time.Duration) (IssuedToken, error) {
	now := c.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(ttl)

	claims := Claims{
		UserID: userID,
		Type:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			// jti keeps two tokens issued in the same second distinct.
			ID: ids.New(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.cfg.Secret))
	if err != nil {
		return IssuedToken{}, fmt.Errorf("sign jwt: %w", err)
	}
	return IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Verify checks signature, expiry and kind. Expiry is reported as
// ErrTokenExpired, every other failure as ErrTokenInvalid.
func (c *TokenCodec) Verify(kind TokenKind, tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(c.cfg.Secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Type != kind || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
