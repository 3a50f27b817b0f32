package auth

import "context"

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying identity
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the identity stored in ctx, if any
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}

// CanAccessUser reports whether identity may act on userID's resources
func (i *Identity) CanAccessUser(userID string) bool {
	return i != nil && (i.IsAdmin() || i.UserID == userID)
}
