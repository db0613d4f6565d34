package activity

import (
	apperrors "github.com/calshare/server/internal/utils/errors"
)

// Domain errors for the activity scheduler.
var (
	ErrActivityNotFound = apperrors.Kind(apperrors.ErrNotFound, "activity not found")
	ErrTodoNotFound     = apperrors.Kind(apperrors.ErrNotFound, "todo not found")
	ErrCalendarNotFound = apperrors.Kind(apperrors.ErrNotFound, "calendar not found")

	ErrNotOwner      = apperrors.Kind(apperrors.ErrForbidden, "activity belongs to another user")
	ErrUserNotMember = apperrors.Kind(apperrors.ErrForbidden, "user is not a member of this calendar")

	ErrUnknownTask = apperrors.Kind(apperrors.ErrBadRequest, "task does not belong to this calendar")
)
