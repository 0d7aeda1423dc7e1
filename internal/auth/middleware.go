package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"tasktracker/internal/metrics"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	bearerScheme        = "Bearer"
	contextKeyIdentity  = "identity"
)

// Verifier validates a raw token string.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// ExtractToken applies the single extraction rule for the Authorization
// header: "Bearer <token>" or a bare token with no scheme.
func ExtractToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrTokenMissing
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found {
		return header, nil
	}
	if !strings.EqualFold(scheme, bearerScheme) {
		return "", ErrTokenMalformed
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrTokenMissing
	}
	return token, nil
}

// Authorize runs the full check for one Authorization header value.
func Authorize(v Verifier, header string) (Identity, error) {
	token, err := ExtractToken(header)
	if err != nil {
		return Identity{}, err
	}
	return v.Verify(token)
}

// IdentityFromContext returns the identity set by RequireToken.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(contextKeyIdentity)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// RequireToken rejects the request unless it carries a valid token.
// A missing credential is 401; anything else wrong with it is 403. The caller
// only sees a generic message, the reason is logged.
func RequireToken(v Verifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := Authorize(v, c.GetHeader(authorizationHeader))
		if err != nil {
			reason := denialReason(err)
			metrics.AuthDenied.WithLabelValues(reason).Inc()
			if logger != nil {
				logger.Warn("request denied",
					slog.String("reason", reason),
					slog.String("path", c.Request.URL.Path),
					slog.String("client_ip", c.ClientIP()),
				)
			}
			if errors.Is(err, ErrTokenMissing) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access denied"})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(contextKeyIdentity, id)
		c.Next()
	}
}

func denialReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenMissing):
		return "missing"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrTokenSignature):
		return "signature"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	default:
		return "invalid"
	}
}
