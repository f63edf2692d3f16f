package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/tenant"
)

// TenantHeader is the HTTP header for tenant identification.
const TenantHeader = "X-Tenant-ID"

// maxTenantIDLength bounds the header value; tenant ids are opaque strings
// (the schema stores them as TEXT), so anything short and non-empty passes.
const maxTenantIDLength = 128

// Tenant middleware resolves the tenant from the X-Tenant-ID header and
// injects it into the request context. Every scoped route runs behind it;
// handlers read the tenant back with tenant.Require. Ids are not required
// to be UUIDs: slugs like "demo" are valid tenants.
func Tenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := tenant.Normalize(c.GetHeader(TenantHeader))
		if tenantID == "" {
			_ = c.Error(
				apperror.NewValidation("tenant is required").
					WithDetail("header", TenantHeader),
			)
			c.Abort()
			return
		}
		if len(tenantID) > maxTenantIDLength {
			_ = c.Error(
				apperror.NewValidation("tenant id too long").
					WithDetail("header", TenantHeader).
					WithDetail("max_length", maxTenantIDLength),
			)
			c.Abort()
			return
		}

		ctx := tenant.WithID(c.Request.Context(), tenantID)
		c.Request = c.Request.WithContext(ctx)

		c.Set("tenant_id", tenantID)

		c.Next()
	}
}
