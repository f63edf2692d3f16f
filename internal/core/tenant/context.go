// Package tenant provides tenant scoping helpers.
//
// Tenancy is shared-schema: every table carries a tenant_id column and every
// query must be scoped by it. The tenant id travels in the request context;
// domain services additionally receive it as an explicit argument so that the
// scoping convention is visible at every call site.
package tenant

import (
	"context"
	"errors"
	"strings"
)

// ErrNoTenantInContext is returned when a tenant id is required but missing.
var ErrNoTenantInContext = errors.New("tenant not found in context")

type ctxKey struct{}

// WithID stores the tenant id in context.
func WithID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, tenantID)
}

// FromContext returns the tenant id or empty string.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Require returns the tenant id or ErrNoTenantInContext.
func Require(ctx context.Context) (string, error) {
	id := FromContext(ctx)
	if id == "" {
		return "", ErrNoTenantInContext
	}
	return id, nil
}

// Normalize trims surrounding whitespace from an externally supplied tenant id.
func Normalize(tenantID string) string {
	return strings.TrimSpace(tenantID)
}
