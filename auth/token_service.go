package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenPair bundles a freshly issued access and refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService issues and validates the two signed token kinds. Access and
// refresh tokens are signed with distinct secrets and expiry windows.
type TokenService interface {
	IssueAccess(identity Identity) (string, error)
	IssueRefresh(identity Identity) (string, error)
	IssuePair(identity Identity) (TokenPair, error)
	ValidateAccess(tokenString string) (*Claims, error)
	ValidateRefresh(tokenString string) (*Claims, error)
}

// TokenServiceImpl implements TokenService over HS256 JWTs.
type TokenServiceImpl struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	logger        Logger
}

// NewTokenService creates a TokenService from the injected configuration.
func NewTokenService(cfg Config, logger Logger) *TokenServiceImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		accessSecret:  []byte(cfg.GetAccessTokenSecret()),
		refreshSecret: []byte(cfg.GetRefreshTokenSecret()),
		accessTTL:     cfg.GetAccessTokenTTL(),
		refreshTTL:    cfg.GetRefreshTokenTTL(),
		issuer:        cfg.GetIssuer(),
		logger:        logger,
	}
}

// IssueAccess mints the short-lived per-request credential.
func (ts *TokenServiceImpl) IssueAccess(identity Identity) (string, error) {
	return ts.sign(identity, TokenKindAccess, ts.accessSecret, ts.accessTTL)
}

// IssueRefresh mints the long-lived rotation credential.
func (ts *TokenServiceImpl) IssueRefresh(identity Identity) (string, error) {
	return ts.sign(identity, TokenKindRefresh, ts.refreshSecret, ts.refreshTTL)
}

// IssuePair mints a fresh access/refresh pair for the identity.
func (ts *TokenServiceImpl) IssuePair(identity Identity) (TokenPair, error) {
	access, err := ts.IssueAccess(identity)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := ts.IssueRefresh(identity)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ValidateAccess checks signature and expiry of an access token.
func (ts *TokenServiceImpl) ValidateAccess(tokenString string) (*Claims, error) {
	return ts.validate(tokenString, TokenKindAccess, ts.accessSecret)
}

// ValidateRefresh checks signature and expiry of a refresh token.
func (ts *TokenServiceImpl) ValidateRefresh(tokenString string) (*Claims, error) {
	return ts.validate(tokenString, TokenKindRefresh, ts.refreshSecret)
}

func (ts *TokenServiceImpl) sign(identity Identity, kind TokenKind, secret []byte, ttl time.Duration) (string, error) {
	if identity == nil {
		return "", errors.New("identity must not be nil", errors.CategoryInternal)
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:  identity.ID(),
		Kind: kind,
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

func (ts *TokenServiceImpl) validate(tokenString string, kind TokenKind, secret []byte) (*Claims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		ts.logger.Error("token validate could not decode claims")
		return nil, ErrTokenMalformed
	}

	// Tokens never cross kinds: an access token presented for refresh (or
	// the reverse) fails even when the signature happens to verify.
	if claims.Kind != "" && claims.Kind != kind {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
