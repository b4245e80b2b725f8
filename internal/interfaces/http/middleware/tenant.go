package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nfehub/backend/internal/infrastructure/logger"
	"github.com/nfehub/backend/internal/interfaces/http/dto"
)

// Tenant context keys
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantConfig holds tenant middleware configuration
type TenantConfig struct {
	// SkipPaths bypass tenant resolution (health probes and the like)
	SkipPaths []string
	// Required rejects requests without a tenant header when true
	Required bool
}

// DefaultTenantConfig returns the default tenant middleware configuration
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready"},
		Required:  true,
	}
}

// Tenant resolves the tenant from the X-Tenant-ID header and stores it in
// both the gin context and the request context logger. Every business route
// is tenant-scoped, so a missing or malformed header is rejected up front.
func Tenant() gin.HandlerFunc {
	return TenantWithConfig(DefaultTenantConfig())
}

// TenantWithConfig returns tenant middleware with custom configuration
func TenantWithConfig(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		raw := c.GetHeader(TenantHeaderKey)
		if raw == "" {
			if cfg.Required {
				abortUnauthorized(c, "Tenant identification required")
				return
			}
			c.Next()
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			abortUnauthorized(c, "Invalid tenant ID")
			return
		}

		c.Set(TenantIDKey, tenantID.String())

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithTenantID(ctx, log, tenantID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}
