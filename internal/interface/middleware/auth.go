package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/starter-webapi/internal/application"
	"github.com/oksasatya/starter-webapi/pkg/helpers"
	"github.com/oksasatya/starter-webapi/pkg/response"
)

// Context keys set by BearerAuth.
const (
	CtxUserIDKey = "userID"
	CtxEmailKey  = "userEmail"
	CtxClaimsKey = "claims"
)

// TokenParser validates a raw access token.
type TokenParser interface {
	ParseToken(token string) (*helpers.Claims, error)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abort(c *gin.Context, status int, msg string) {
	resp := response.Error[any](c, status, msg, nil)
	c.AbortWithStatusJSON(resp.Status, resp)
}

// BearerAuth validates the Authorization: Bearer token and rejects revoked
// ones when revoker is set. On success it stores the user id, email and
// claims in the Gin context.
func BearerAuth(tokens TokenParser, revoker application.TokenRevoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := tokens.ParseToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid access token")
			return
		}
		if revoker != nil {
			revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				abort(c, http.StatusServiceUnavailable, "token revocation check failed")
				return
			}
			if revoked {
				abort(c, http.StatusUnauthorized, "token has been revoked")
				return
			}
		}

		c.Set(CtxUserIDKey, claims.UserID())
		c.Set(CtxEmailKey, claims.Email)
		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by BearerAuth.
func ClaimsFrom(c *gin.Context) *helpers.Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*helpers.Claims)
	return claims
}
