package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinic-api/internal/handler"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/service/identity"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

const ContextPrincipal = "principal"

type AuthMiddleware struct {
	resolver *identity.Resolver
	metrics  *metrics.Metrics
}

func NewAuthMiddleware(resolver *identity.Resolver, m *metrics.Metrics) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver, metrics: m}
}

// Authenticate resolves the bearer token into a principal and stores it in
// the request context. An expired token gets its own status code so clients
// can distinguish refresh-and-retry from re-login.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			m.fail(c, http.StatusUnauthorized, "missing authorization header", "missing_header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.fail(c, http.StatusUnauthorized, "invalid authorization format", "bad_format")
			return
		}

		principal, err := m.resolver.Resolve(c.Request.Context(), parts[1])
		if err != nil {
			status := http.StatusUnauthorized
			message := "invalid token"
			reason := "invalid_token"
			if appErr, ok := apperrors.AsAppError(err); ok {
				status = appErr.StatusCode()
				if appErr.Code == apperrors.ErrTokenExpired {
					message = "token expired"
					reason = "expired_token"
				}
			}
			m.fail(c, status, message, reason)
			return
		}

		c.Set(ContextPrincipal, principal)
		c.Next()
	}
}

// RequirePermission gates the route on a single permission code. It assumes
// Authenticate ran earlier in the chain.
func (m *AuthMiddleware) RequirePermission(required model.PermissionCode) gin.HandlerFunc {
	guard := identity.RequirePermission(required)
	return func(c *gin.Context) {
		principal := PrincipalFromContext(c)

		if _, err := guard(principal); err != nil {
			status := http.StatusForbidden
			if appErr, ok := apperrors.AsAppError(err); ok {
				status = appErr.StatusCode()
			}
			m.fail(c, status, err.Error(), "forbidden")
			return
		}

		c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, or nil when the
// route is reached without authentication.
func PrincipalFromContext(c *gin.Context) *model.Principal {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return nil
	}
	principal, _ := v.(*model.Principal)
	return principal
}

func (m *AuthMiddleware) fail(c *gin.Context, status int, message, reason string) {
	if m.metrics != nil {
		m.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
	c.JSON(status, handler.NewErrorResponse(message))
	c.Abort()
}
