package audit

import (
	"context"

	"github.com/google/uuid"
)

// Actor identifies who caused a write.
type Actor struct {
	UserID    *uuid.UUID
	Role      string
	RequestID string
}

type actorKey struct{}

type reasonKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) Actor {
	if ctx == nil {
		return Actor{}
	}
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

// WithReason attaches a free-text reason (for example "consultation <id>
// confirmed") to every event written under ctx.
func WithReason(ctx context.Context, reason string) context.Context {
	return context.WithValue(ctx, reasonKey{}, reason)
}

func ReasonFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, _ := ctx.Value(reasonKey{}).(string)
	return r
}
