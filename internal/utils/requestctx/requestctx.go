package requestctx

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	actorKey
)

// Actor is the authenticated caller of a request. It is built once by the
// auth middleware and never mutated afterwards.
type Actor struct {
	userID    uuid.UUID
	email     string
	requestID string
}

// NewActor creates an actor for the given user.
func NewActor(userID uuid.UUID, email, requestID string) Actor {
	return Actor{userID: userID, email: email, requestID: requestID}
}

func (a Actor) UserID() uuid.UUID { return a.userID }
func (a Actor) Email() string     { return a.email }
func (a Actor) RequestID() string { return a.requestID }
func (a Actor) IsZero() bool      { return a.userID == uuid.Nil }

func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		return context.WithValue(context.Background(), requestIDKey, requestID)
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(requestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the actor stored in ctx.
func ActorFrom(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok && !actor.IsZero()
}
