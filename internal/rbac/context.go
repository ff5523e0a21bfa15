package rbac

import "context"

type subjectKey struct{}
type roleKey struct{}

var (
	ctxKeySubject = subjectKey{}
	ctxKeyRole    = roleKey{}
)

// WithSubject stores the authenticated user ID in the context.
func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySubject, sub)
}

// SubjectFromContext returns the authenticated user ID, or "" when the
// request never passed the JWT middleware.
func SubjectFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeySubject).(string); ok {
		return s
	}
	return ""
}

// WithRole stores the caller's effective role in the context.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxKeyRole, role)
}

// RoleFromContext returns the caller's effective role, or "".
func RoleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyRole).(string); ok {
		return s
	}
	return ""
}
