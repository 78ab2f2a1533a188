package context

import "context"

type requestIDKey struct{}
type agencyIDKey struct{}
type actorIDKey struct{}

// WithRequestID stores the request correlation ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request correlation ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}

// WithAgencyID stores the active agency ID for log enrichment.
func WithAgencyID(ctx context.Context, agencyID string) context.Context {
	return context.WithValue(ctx, agencyIDKey{}, agencyID)
}

// AgencyIDFromContext returns the active agency ID, or "".
func AgencyIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(agencyIDKey{}).(string)
	return value
}

// WithActorID stores the acting agent ID for log enrichment.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey{}, actorID)
}

// ActorIDFromContext returns the acting agent ID, or "".
func ActorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(actorIDKey{}).(string)
	return value
}
