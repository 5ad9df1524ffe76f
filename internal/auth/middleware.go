package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/capykyo/capy-book-fetch/internal/apperrors"
	"github.com/capykyo/capy-book-fetch/internal/logger"
)

const claimsKey = "claims"

// Messages returned with 401 responses.
const (
	MsgMissingToken = "missing authorization token"
	MsgBadFormat    = "invalid authorization token format"
	MsgInvalidToken = "invalid or expired token"
)

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively and is optional.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	scheme, rest, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(rest)
	}
	if strings.EqualFold(header, "Bearer") {
		return ""
	}
	return header
}

// Authenticate verifies the Authorization header and returns the token's claims.
func Authenticate(v Verifier, header string) (*Claims, error) {
	if strings.TrimSpace(header) == "" {
		return nil, apperrors.Unauthorized(MsgMissingToken)
	}

	token := BearerToken(header)
	if token == "" {
		return nil, apperrors.Unauthorized(MsgBadFormat)
	}

	claims, err := v.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnauthorized, MsgInvalidToken, err)
	}
	return claims, nil
}

// Middleware creates a JWT authentication middleware. With bypass set every
// request passes without claims.
func Middleware(v Verifier, bypass bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bypass {
			c.Next()
			return
		}

		claims, err := Authenticate(v, c.GetHeader("Authorization"))
		if err != nil {
			logger.FromContext(c.Request.Context()).Debug("Authentication failed",
				logger.String("path", c.Request.URL.Path),
				logger.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.NewResponse(err))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// GetClaims extracts claims from the gin context
func GetClaims(c *gin.Context) (*Claims, bool) {
	claims, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}

	cl, ok := claims.(*Claims)
	return cl, ok
}
