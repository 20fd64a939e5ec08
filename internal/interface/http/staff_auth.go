package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/diabetes-risk/internal/domain/admin"
	apperrors "github.com/yanqian/diabetes-risk/pkg/errors"
)

const staffClaimsKey = "staff_claims"

// requireStaff admits requests carrying a valid staff bearer token and
// stores its claims on the context.
func requireStaff(svc admin.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="staff"`)
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "staff bearer token required", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), token)
		switch {
		case err == nil:
		case apperrors.IsCode(err, "invalid_token"):
			c.Header("WWW-Authenticate", `Bearer realm="staff", error="invalid_token"`)
			abortWithError(c, NewHTTPError(http.StatusForbidden, "invalid_token", errMessage(err), err))
			return
		default:
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_failed", "token check failed", err))
			return
		}
		c.Set(staffClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func staffClaims(c *gin.Context) (admin.Claims, bool) {
	value, ok := c.Get(staffClaimsKey)
	if !ok {
		return admin.Claims{}, false
	}
	claims, ok := value.(admin.Claims)
	return claims, ok
}
