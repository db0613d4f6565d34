package invitation

import (
	apperrors "github.com/calshare/server/internal/utils/errors"
)

// Domain errors for the invitation ledger.
var (
	ErrInvitationNotFound = apperrors.Kind(apperrors.ErrNotFound, "invitation not found")
	ErrCalendarNotFound   = apperrors.Kind(apperrors.ErrNotFound, "calendar not found")
	ErrUserNotFound       = apperrors.Kind(apperrors.ErrNotFound, "user not found")

	ErrNotInvitee       = apperrors.Kind(apperrors.ErrForbidden, "invitation is not addressed to you")
	ErrNotCalendarAdmin = apperrors.Kind(apperrors.ErrForbidden, "only calendar admins can invite")

	ErrInvitationAlreadyProcessed = apperrors.Kind(apperrors.ErrConflict, "invitation has already been processed")
	ErrInvitationAlreadyPending   = apperrors.Kind(apperrors.ErrConflict, "an invitation is already pending for this user")
	ErrAlreadyMember              = apperrors.Kind(apperrors.ErrConflict, "user is already a member")
)
