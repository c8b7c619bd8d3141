package services

import (
	"time"

	"github.com/Dosada05/u13-football/models"
)

type Transition string

const (
	TransitionStart      Transition = "start"
	TransitionFinish     Transition = "finish"
	TransitionPostpone   Transition = "postpone"
	TransitionCancel     Transition = "cancel"
	TransitionReschedule Transition = "reschedule"
)

// nextMatchStatus - конечный автомат общего матча.
// scheduled -> live -> finished; scheduled -> postponed -> scheduled; scheduled|live -> cancelled.
// finished и cancelled - конечные состояния.
func nextMatchStatus(current models.MatchStatus, tr Transition, hasDate bool) (models.MatchStatus, error) {
	switch tr {
	case TransitionStart:
		if current != models.MatchScheduled {
			return current, ErrMatchNotScheduled
		}
		return models.MatchLive, nil

	case TransitionFinish:
		if current.Terminal() {
			return current, ErrMatchTerminal
		}
		return models.MatchFinished, nil

	case TransitionPostpone:
		if !hasDate {
			return current, ErrNewDateRequired
		}
		if current != models.MatchScheduled {
			return current, ErrMatchCannotPostpone
		}
		return models.MatchPostponed, nil

	case TransitionCancel:
		switch current {
		case models.MatchScheduled, models.MatchLive, models.MatchHalfTime:
			return models.MatchCancelled, nil
		}
		return current, ErrMatchCannotCancel

	case TransitionReschedule:
		if !hasDate {
			return current, ErrNewDateRequired
		}
		if current != models.MatchScheduled && current != models.MatchPostponed {
			return current, ErrMatchCannotReschedule
		}
		return models.MatchScheduled, nil
	}
	return current, ErrStateConflict
}

// applyMatchTransition переводит общий матч и проставляет время начала/окончания.
func applyMatchTransition(m *models.GlobalMatch, tr Transition, newDate *time.Time, now time.Time) error {
	next, err := nextMatchStatus(m.Status, tr, newDate != nil)
	if err != nil {
		return err
	}
	switch tr {
	case TransitionStart:
		m.ActualStartTime = &now
	case TransitionFinish:
		m.ActualEndTime = &now
	case TransitionPostpone, TransitionReschedule:
		m.ScheduledDate = *newDate
	}
	m.Status = next
	return nil
}

// nextTournamentMatchStatus: у турнирного матча завершение разрешено только из live или scheduled.
func nextTournamentMatchStatus(current models.MatchStatus, tr Transition) (models.MatchStatus, error) {
	if tr == TransitionFinish {
		if current != models.MatchLive && current != models.MatchScheduled {
			return current, ErrMatchCannotFinish
		}
		return models.MatchFinished, nil
	}
	// дата турнирного матча меняется обычным обновлением
	return nextMatchStatus(current, tr, true)
}

// transitionForStatus определяет переход, ведущий в целевой статус.
func transitionForStatus(target models.MatchStatus) (Transition, bool) {
	switch target {
	case models.MatchLive:
		return TransitionStart, true
	case models.MatchFinished:
		return TransitionFinish, true
	case models.MatchPostponed:
		return TransitionPostpone, true
	case models.MatchCancelled:
		return TransitionCancel, true
	case models.MatchScheduled:
		return TransitionReschedule, true
	}
	return "", false
}

// changeTournamentMatchStatus применяет явно запрошенный статус турнирного матча.
func changeTournamentMatchStatus(m *models.TournamentMatch, target models.MatchStatus) error {
	if m.Status == target {
		return nil
	}
	tr, ok := transitionForStatus(target)
	if !ok {
		return ErrStateConflict
	}
	next, err := nextTournamentMatchStatus(m.Status, tr)
	if err != nil {
		return err
	}
	m.Status = next
	return nil
}
