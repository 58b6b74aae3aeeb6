package kernel

import "context"

// ============================================================================
// Context Keys - Claves para context.Context
// ============================================================================

type ContextKey string

const (
	// UserContextKey es la clave para almacenar UserID en context.Context
	UserContextKey ContextKey = "user_id"

	// RequestIDKey es la clave para almacenar el ID de la petición
	RequestIDKey ContextKey = "request_id"
)

// WithUserID attaches the calling user's id to ctx.
func WithUserID(ctx context.Context, userID UserID) context.Context {
	return context.WithValue(ctx, UserContextKey, userID)
}

// UserIDFromContext retrieves the calling user's id, if any was attached.
func UserIDFromContext(ctx context.Context) (UserID, bool) {
	v, ok := ctx.Value(UserContextKey).(UserID)
	return v, ok
}
