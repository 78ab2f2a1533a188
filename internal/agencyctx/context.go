package agencyctx

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the resolved caller for a request: which agent is acting,
// which agency they belong to, and whether they hold the admin role.
type Identity struct {
	AgentID  uuid.UUID
	AgencyID uuid.UUID
	IsAdmin  bool
}

type identityKey struct{}

// WithIdentity stores the caller identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller identity, if set.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.AgencyID == uuid.Nil {
		return Identity{}, false
	}
	return id, true
}

// AgencyIDFromContext returns the active agency ID, if set.
func AgencyIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return id.AgencyID, true
}
