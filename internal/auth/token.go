package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token discriminants. A well-signed refresh token presented where an
// access token is expected is rejected, and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the signed payload of both token kinds: subject user ID
// plus the access/refresh discriminant.
type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies stateless bearer tokens with HS256.
// No server-side state is kept; expiry is the only revocation.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenCodec(secret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (c *TokenCodec) IssueAccessToken(userID string) (string, error) {
	return c.issue(userID, TokenTypeAccess, c.accessTTL)
}

func (c *TokenCodec) IssueRefreshToken(userID string) (string, error) {
	return c.issue(userID, TokenTypeRefresh, c.refreshTTL)
}

// AccessTTL is exposed so callers can report expires_in to clients.
func (c *TokenCodec) AccessTTL() time.Duration { return c.accessTTL }

func (c *TokenCodec) issue(userID, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// VerifyAccessToken returns the subject user ID of a valid access
// token. Fails with ErrExpiredToken past expiry and ErrWrongTokenType
// for a refresh token, even when the signature is good.
func (c *TokenCodec) VerifyAccessToken(tokenStr string) (string, error) {
	return c.verify(tokenStr, TokenTypeAccess)
}

func (c *TokenCodec) VerifyRefreshToken(tokenStr string) (string, error) {
	return c.verify(tokenStr, TokenTypeRefresh)
}

func (c *TokenCodec) verify(tokenStr, wantType string) (string, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return "", ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return "", ErrWrongTokenType
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
