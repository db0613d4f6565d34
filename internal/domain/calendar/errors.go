package calendar

import (
	apperrors "github.com/calshare/server/internal/utils/errors"
)

// Domain errors for the calendar registry.
var (
	// Lookup errors
	ErrCalendarNotFound = apperrors.Kind(apperrors.ErrNotFound, "calendar not found")
	ErrUserNotFound     = apperrors.Kind(apperrors.ErrNotFound, "user not found")
	ErrTaskNotFound     = apperrors.Kind(apperrors.ErrNotFound, "task not found")

	// Permission errors
	ErrNotFounder       = apperrors.Kind(apperrors.ErrForbidden, "only the founder can do this")
	ErrNotAdmin         = apperrors.Kind(apperrors.ErrForbidden, "only calendar admins can do this")
	ErrNotMember        = apperrors.Kind(apperrors.ErrForbidden, "not a member of this calendar")
	ErrFounderProtected = apperrors.Kind(apperrors.ErrForbidden, "the founder cannot be removed")

	// Input errors
	ErrTargetNotMember  = apperrors.Kind(apperrors.ErrBadRequest, "user is not a member of this calendar")
	ErrTaskLimitReached = apperrors.Kind(apperrors.ErrBadRequest, "task catalog is full")
)
