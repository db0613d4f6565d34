package relation

import (
	apperrors "github.com/calshare/server/internal/utils/errors"
)

// ErrConcurrentModification is returned when a unit of work keeps losing
// version races and its retry budget runs out.
var ErrConcurrentModification = apperrors.Kind(apperrors.ErrConflict, "concurrent modification, retry later")
