package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenTTL is the fixed lifetime of an access token.
const AccessTokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Single-audience tokens carry "aud" as a plain string, not a one-element array.
func init() { jwt.MarshalSingleStringAsArray = false }

// JWTManager signs and validates HS512 access tokens for one issuer/audience pair.
type JWTManager struct {
	Key      []byte
	Issuer   string
	Audience string
	TTL      time.Duration
	now      func() time.Time
}

func NewJWTManager(key, issuer, audience string) *JWTManager {
	return &JWTManager{
		Key:      []byte(key),
		Issuer:   issuer,
		Audience: audience,
		TTL:      AccessTokenTTL,
		now:      time.Now,
	}
}

// Claims carries jti, sub (user id), email, iss, aud and exp.
// iat and nbf are left unset on purpose.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *Claims) UserID() string { return c.Subject }

// GenerateAccessToken mints a signed token for userID/email and returns it
// together with its claims.
func (m *JWTManager) GenerateAccessToken(userID, email string) (string, *Claims, error) {
	exp := m.now().UTC().Add(m.TTL)
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    m.Issuer,
			Audience:  jwt.ClaimStrings{m.Audience},
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	s, err := t.SignedString(m.Key)
	if err != nil {
		return "", nil, err
	}
	return s, claims, nil
}

// ParseAccessToken validates signature, algorithm, issuer, audience and expiry.
func (m *JWTManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.Key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(m.Issuer),
		jwt.WithAudience(m.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
