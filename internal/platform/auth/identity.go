package auth

import "context"

type contextKey string

const identityKey contextKey = "identity"

// Identity is the resolved caller attached to the request context by the
// JWT middleware: who is calling, which organization they belong to, and
// what role they hold. OrgID 0 means the caller has no organization
// context (e.g. a platform-level superadmin).
type Identity struct {
	UserID int64
	OrgID  int64
	Role   Role
}

// HasOrg reports whether the identity carries an organization context.
func (id Identity) HasOrg() bool { return id.OrgID > 0 }

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
