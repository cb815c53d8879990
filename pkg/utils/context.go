package utils

import (
	"context"
)

type contextKey string

const AdminKey contextKey = "admin"

// SetAdminContext marks the request as authenticated admin. Set by the admin
// middleware only; the core services merely read the flag passed down to them.
func SetAdminContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, AdminKey, true)
}

// IsAdminFromContext reports whether the request passed admin authentication.
func IsAdminFromContext(ctx context.Context) bool {
	admin, ok := ctx.Value(AdminKey).(bool)
	return ok && admin
}
