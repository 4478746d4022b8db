package utils // package utils provides token issuing and password hashing helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Audiences keep the two token classes apart: a refresh token never
// verifies as an access token and vice versa, even with a shared secret.
const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

var (
	// ErrTokenExpired is returned when a token is well formed and correctly
	// signed but past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for every other verification failure.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the claim set carried by both token classes.  UserID is the
// only application claim; the registered claims hold expiry, issue time,
// audience and a unique token id.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// KeyConfig is the signing secret and default lifetime of one token class.
type KeyConfig struct {
	Secret string
	TTL    time.Duration
}

// TokenIssuer mints and verifies HS256 access and refresh tokens.  It
// holds no state beyond its configuration and is safe for concurrent use.
type TokenIssuer struct {
	access  KeyConfig
	refresh KeyConfig
	issuer  string
}

// NewTokenIssuer validates the two key configurations.  Both secrets are
// required and must differ.
func NewTokenIssuer(issuer string, access, refresh KeyConfig) (*TokenIssuer, error) {
	if access.Secret == "" || refresh.Secret == "" {
		return nil, errors.New("jwt: access and refresh secrets are required")
	}
	if access.Secret == refresh.Secret {
		return nil, errors.New("jwt: access and refresh secrets must differ")
	}
	return &TokenIssuer{access: access, refresh: refresh, issuer: issuer}, nil
}

// IssueAccessToken signs an access token for claims with the default TTL.
func (i *TokenIssuer) IssueAccessToken(claims Claims) (string, error) {
	return i.IssueAccessTokenTTL(claims, i.access.TTL)
}

// IssueAccessTokenTTL signs an access token with an explicit TTL.  A TTL
// of zero or less produces a token that is already expired.
func (i *TokenIssuer) IssueAccessTokenTTL(claims Claims, ttl time.Duration) (string, error) {
	return i.sign(i.access.Secret, audienceAccess, claims, ttl)
}

// IssueRefreshToken signs a refresh token for claims with the default TTL.
func (i *TokenIssuer) IssueRefreshToken(claims Claims) (string, error) {
	return i.IssueRefreshTokenTTL(claims, i.refresh.TTL)
}

// IssueRefreshTokenTTL signs a refresh token with an explicit TTL.
func (i *TokenIssuer) IssueRefreshTokenTTL(claims Claims, ttl time.Duration) (string, error) {
	return i.sign(i.refresh.Secret, audienceRefresh, claims, ttl)
}

// VerifyAccessToken checks signature, audience and expiry of an access
// token.  It fails with ErrTokenExpired or ErrTokenInvalid.
func (i *TokenIssuer) VerifyAccessToken(token string) (*Claims, error) {
	return i.verify(i.access.Secret, audienceAccess, token)
}

// VerifyRefreshToken is VerifyAccessToken for refresh tokens.
func (i *TokenIssuer) VerifyRefreshToken(token string) (*Claims, error) {
	return i.verify(i.refresh.Secret, audienceRefresh, token)
}

func (i *TokenIssuer) sign(secret, audience string, claims Claims, ttl time.Duration) (string, error) {
	if claims.UserID == "" {
		return "", errors.New("jwt: user id claim is required")
	}
	now := time.Now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    i.issuer,
		Subject:   claims.UserID,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

func (i *TokenIssuer) verify(secret, audience, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		// Only a correctly signed token can be reported as expired.
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
