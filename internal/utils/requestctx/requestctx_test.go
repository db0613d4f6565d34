package requestctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}

func TestActor(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		userID := uuid.New()
		ctx := WithActor(context.Background(), NewActor(userID, "a@example.com", "req-1"))

		actor, ok := ActorFrom(ctx)
		assert.True(t, ok)
		assert.Equal(t, userID, actor.UserID())
		assert.Equal(t, "a@example.com", actor.Email())
		assert.Equal(t, "req-1", actor.RequestID())
	})

	t.Run("missing", func(t *testing.T) {
		_, ok := ActorFrom(context.Background())
		assert.False(t, ok)
	})

	t.Run("zero_actor_is_not_authenticated", func(t *testing.T) {
		ctx := WithActor(context.Background(), Actor{})
		_, ok := ActorFrom(ctx)
		assert.False(t, ok)
	})
}
