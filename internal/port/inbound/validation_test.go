package inbound

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calshare/server/internal/model"
	apperrors "github.com/calshare/server/internal/utils/errors"
)

func TestValidate(t *testing.T) {
	t.Run("short_title", func(t *testing.T) {
		err := Validate(&CreateCalendarInput{Title: "ab"})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))

		appErr := apperrors.FromError(err)
		assert.Contains(t, appErr.Details, "title")
	})

	t.Run("valid_calendar", func(t *testing.T) {
		assert.NoError(t, Validate(&CreateCalendarInput{Title: "abc"}))
	})

	t.Run("empty_member_list", func(t *testing.T) {
		err := Validate(&AddMembersInput{})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("nil_member_id", func(t *testing.T) {
		err := Validate(&DeleteMembersInput{MemberIDs: []uuid.UUID{uuid.Nil}})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("unknown_day_key", func(t *testing.T) {
		err := Validate(&CreateActivityInput{
			UserID: uuid.New(),
			Days:   model.Days{"funday": {uuid.New()}},
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Contains(t, err.Error(), "funday")
	})

	t.Run("known_day_keys", func(t *testing.T) {
		task := uuid.New()
		err := Validate(&CreateActivityInput{
			UserID: uuid.New(),
			Days:   model.Days{model.Monday: {task, task}, model.Sunday: {}},
		})
		assert.NoError(t, err)
	})

	t.Run("register_email", func(t *testing.T) {
		err := Validate(&RegisterInput{Name: "a", Email: "nope", Password: "password1"})
		assert.True(t, apperrors.IsValidation(err))
	})
}
