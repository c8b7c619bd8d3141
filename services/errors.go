package services

import (
	"errors"
	"fmt"
)

// Классы ошибок. Конкретные ошибки ниже оборачивают один из них,
// обработчики HTTP различают ответы через errors.Is.
var (
	ErrNotFound             = errors.New("requested resource not found")
	ErrValidationFailed     = errors.New("validation failed")
	ErrStateConflict        = errors.New("invalid state transition")
	ErrIntegrity            = errors.New("data integrity violation")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
)

var (
	// Не найдено (включая записи вне видимости пользователя)
	ErrUserNotFound         = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrClubNotFound         = fmt.Errorf("%w: club not found", ErrNotFound)
	ErrTeamNotFound         = fmt.Errorf("%w: team not found", ErrNotFound)
	ErrPlayerNotFound       = fmt.Errorf("%w: player not found", ErrNotFound)
	ErrTournamentNotFound   = fmt.Errorf("%w: tournament not found", ErrNotFound)
	ErrGroupNotFound        = fmt.Errorf("%w: group not found", ErrNotFound)
	ErrPhaseNotFound        = fmt.Errorf("%w: phase not found", ErrNotFound)
	ErrRegistrationNotFound = fmt.Errorf("%w: registration not found", ErrNotFound)
	ErrMatchNotFound        = fmt.Errorf("%w: match not found", ErrNotFound)
	ErrLineupNotFound       = fmt.Errorf("%w: lineup entry not found", ErrNotFound)
	ErrEventNotFound        = fmt.Errorf("%w: match event not found", ErrNotFound)
	ErrReportNotFound       = fmt.Errorf("%w: match report not found", ErrNotFound)

	// Валидация и бизнес-правила
	ErrMainPlayerLimit       = fmt.Errorf("%w: team already has 11 active main players", ErrValidationFailed)
	ErrSameTeams             = fmt.Errorf("%w: home and away teams must differ", ErrValidationFailed)
	ErrTeamNotInGroup        = fmt.Errorf("%w: both teams must be members of the group", ErrValidationFailed)
	ErrGroupOutsideTourney   = fmt.Errorf("%w: group does not belong to this tournament", ErrValidationFailed)
	ErrPhaseOutsideTourney   = fmt.Errorf("%w: phase does not belong to this tournament", ErrValidationFailed)
	ErrLeagueSingleGroup     = fmt.Errorf("%w: a league tournament can have only one group", ErrValidationFailed)
	ErrTournamentDateRange   = fmt.Errorf("%w: end date must not be before start date", ErrValidationFailed)
	ErrRegistrationClosed    = fmt.Errorf("%w: tournament is not accepting registrations", ErrValidationFailed)
	ErrTeamNotInMatch        = fmt.Errorf("%w: team does not play in this match", ErrValidationFailed)
	ErrPlayerNotInTeam       = fmt.Errorf("%w: player does not belong to this team", ErrValidationFailed)
	ErrNewDateRequired       = fmt.Errorf("%w: a new date is required", ErrValidationFailed)
	ErrInvalidPhoneNumber    = fmt.Errorf("%w: invalid phone number", ErrValidationFailed)
	ErrInvalidRole           = fmt.Errorf("%w: role cannot be chosen at registration", ErrValidationFailed)
	ErrStorageDisabled       = fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	ErrInvalidFileType       = fmt.Errorf("%w: unsupported file type", ErrValidationFailed)
	ErrWrongPassword         = fmt.Errorf("%w: current password is incorrect", ErrValidationFailed)
	ErrInvalidRegistrationTo = fmt.Errorf("%w: registration status can only move from pending", ErrValidationFailed)

	// Недопустимые переходы состояний
	ErrMatchNotScheduled      = fmt.Errorf("%w: match is not scheduled", ErrStateConflict)
	ErrMatchTerminal          = fmt.Errorf("%w: match is already finished or cancelled", ErrStateConflict)
	ErrMatchCannotFinish      = fmt.Errorf("%w: match must be live or scheduled to finish", ErrStateConflict)
	ErrMatchCannotPostpone    = fmt.Errorf("%w: only scheduled matches can be postponed", ErrStateConflict)
	ErrMatchCannotCancel      = fmt.Errorf("%w: only scheduled or live matches can be cancelled", ErrStateConflict)
	ErrMatchCannotReschedule  = fmt.Errorf("%w: only scheduled or postponed matches can be rescheduled", ErrStateConflict)
	ErrTournamentNotUpcoming  = fmt.Errorf("%w: tournament has already started", ErrStateConflict)
	ErrTournamentNotActive    = fmt.Errorf("%w: tournament is not active", ErrStateConflict)
	ErrTournamentAlreadyEnded = fmt.Errorf("%w: tournament is already finished or cancelled", ErrStateConflict)
	ErrMirroredMatch          = fmt.Errorf("%w: this field is managed by the tournament match", ErrStateConflict)

	// Аутентификация
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrAuthenticationFailed)

	// Права доступа
	ErrAccountDisabled        = fmt.Errorf("%w: account is disabled", ErrForbiddenOperation)
	ErrReadOnlyRole           = fmt.Errorf("%w: role has read-only access", ErrForbiddenOperation)
	ErrAdminCannotCreateMatch = fmt.Errorf("%w: admins can only create matches inside their tournaments", ErrForbiddenOperation)
	ErrNotClubOwner           = fmt.Errorf("%w: only the club owner can perform this action", ErrForbiddenOperation)
	ErrNotTeamCoach           = fmt.Errorf("%w: only the team coach can perform this action", ErrForbiddenOperation)
	ErrNotMatchCreator        = fmt.Errorf("%w: only the match creator or an admin can perform this action", ErrForbiddenOperation)
	ErrNotOrganizer           = fmt.Errorf("%w: only the tournament organizer can perform this action", ErrForbiddenOperation)
	ErrNotTeamStaff           = fmt.Errorf("%w: only the club owner or the team coach can perform this action", ErrForbiddenOperation)
	ErrNotMatchStaff          = fmt.Errorf("%w: only staff of a participating team can perform this action", ErrForbiddenOperation)
	ErrAdminOnly              = fmt.Errorf("%w: only admins can perform this action", ErrForbiddenOperation)
	ErrStaffOnly              = fmt.Errorf("%w: only staff members can perform this action", ErrForbiddenOperation)
)

// IntegrityError - нарушение ограничения хранилища с подсказкой о поле.
type IntegrityError struct {
	Field   string
	Message string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *IntegrityError) Unwrap() error {
	return ErrIntegrity
}
