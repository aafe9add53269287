package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vacancydesk/backend/internal/models"
)

// TokenTTL is how long a session token stays valid after issuance.
// There is no revocation list; invalidating outstanding tokens means
// rotating the secret.
const TokenTTL = 7 * 24 * time.Hour

// TokenCodec signs and verifies stateless session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: TokenTTL, now: time.Now}
}

// Sign issues an HS256 token for the user. Returns the compact token and
// its expiry so the cookie can match it.
func (c *TokenCodec) Sign(user *models.User) (string, time.Time, error) {
	now := c.now()
	expiry := now.Add(c.ttl)

	claims := &models.Claims{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiry, nil
}

// Verify parses and validates a token. Malformed structure, a bad
// signature, and an elapsed expiry all return the same
// models.ErrInvalidToken so callers cannot tell them apart.
func (c *TokenCodec) Verify(token string) (*models.Claims, error) {
	claims := &models.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return nil, models.ErrInvalidToken
	}
	return claims, nil
}
