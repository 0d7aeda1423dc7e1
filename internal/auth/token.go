package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 20 * time.Minute

var (
	ErrTokenMissing   = errors.New("missing credential")
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenSignature = errors.New("invalid token signature")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("invalid token")
)

// Identity is the authenticated principal carried by a token.
type Identity struct {
	UserID string
	Email  string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// TokenManager issues and verifies HS256 tokens. Nothing is stored server-side:
// a token is valid until its expiry as long as the secret is unchanged.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a manager signing with secret. A non-positive ttl
// falls back to DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the validity window of issued tokens.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for id that expires after the configured ttl.
func (m *TokenManager) Issue(id Identity) (string, error) {
	if id.UserID == "" {
		return "", errors.New("issue token: empty subject")
	}
	now := m.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Email: id.Email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its identity.
func (m *TokenManager) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrTokenMissing
	}
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Identity{}, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Identity{}, ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrTokenExpired
		default:
			return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}
	if !parsed.Valid || claims.Subject == "" {
		return Identity{}, ErrTokenInvalid
	}
	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
