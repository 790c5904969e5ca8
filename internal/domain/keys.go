package domain

import "context"

type CtxKey string

const (
	KeyRequestID CtxKey = "RequestID"
)

// GinKeyRequestID is the gin context key holding the same request id.
const GinKeyRequestID = "RequestID"

// RequestIDFrom returns the request id stored by the request id middleware, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(KeyRequestID).(string)
	return id
}
