package auth

import "context"

type ctxKey string

const userKey ctxKey = "authSubject"

// WithSubject stores the authenticated user ID on the context.
func WithSubject(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// Subject returns the authenticated user ID, or "" when the request
// did not pass the bearer middleware.
func Subject(ctx context.Context) string {
	if v, ok := ctx.Value(userKey).(string); ok {
		return v
	}
	return ""
}
