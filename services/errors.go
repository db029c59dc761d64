package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed   = errors.New("validation failed")
	ErrCupTitleRequired   = errors.New("cup title is required")
	ErrCupInvalidState    = errors.New("invalid cup state provided")
	ErrTeamNameRequired   = errors.New("team name is required")
	ErrCupFull            = errors.New("cup already has 16 teams")
	ErrTeamPlaced         = errors.New("team already has a final placement and cannot be deleted")
	ErrScoreNegative      = errors.New("points must not be negative")
	ErrGroupNameInvalid   = errors.New("group name must be one of the phase's group letters")
	ErrGroupAlreadyFull   = errors.New("group already has 4 teams")
	ErrTeamAlreadyGrouped = errors.New("team is already assigned to a group in this phase")
	ErrGroupCupMismatch   = errors.New("group belongs to a different cup than the team")

	// Phase transition preconditions. These are checked before any write, so
	// a rejected transition leaves the cup untouched.
	ErrCupWrongState        = errors.New("cup is not in the required state for this transition")
	ErrCupNeedsSixteen      = errors.New("cup needs exactly 16 teams to start the qualifying round")
	ErrGroupsIncomplete     = errors.New("qualifying phase needs groups A-D with 4 teams each")
	ErrTransitionIncomplete = errors.New("phase transition failed partway; manual reconciliation may be needed")

	// Auth
	ErrAuthInvalidPassword = errors.New("invalid admin password")

	// Entity variants of not-found, kept for clearer HTTP mapping
	ErrCupNotFound   = errors.New("cup not found")
	ErrTeamNotFound  = errors.New("team not found")
	ErrGroupNotFound = errors.New("group not found")
	ErrMatchNotFound = errors.New("match not found")
)
