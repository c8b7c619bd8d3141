package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/u13-football/models"
	"github.com/Dosada05/u13-football/services"
	"github.com/google/uuid"
)

// TournamentMatchHandler - матчи внутри турнира. Каждое изменение
// отражается в общем расписании матчей.
type TournamentMatchHandler struct {
	matchService services.TournamentMatchService
}

func NewTournamentMatchHandler(ms services.TournamentMatchService) *TournamentMatchHandler {
	return &TournamentMatchHandler{matchService: ms}
}

// CreateMatch godoc
// @Summary      Создать матч турнира
// @Tags         tournament-matches
// @Accept       json
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Param        input body services.CreateTournamentMatchInput true "Данные матча"
// @Success      201 {object} models.TournamentMatch
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/matches [post]
func (h *TournamentMatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateTournamentMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), p, tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, match)
}

// CreateGroupMatch godoc
// @Summary      Создать матч группы
// @Description  Обе команды должны состоять в группе
// @Tags         tournament-matches
// @Accept       json
// @Produce      json
// @Param        groupID path int true "ID группы"
// @Param        input body services.CreateTournamentMatchInput true "Данные матча"
// @Success      201 {object} models.TournamentMatch
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /groups/{groupID}/matches [post]
func (h *TournamentMatchHandler) CreateGroupMatch(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreateTournamentMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateGroupMatch(r.Context(), p, groupID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, match)
}

// ListTournamentMatches godoc
// @Summary      Матчи турнира
// @Tags         tournament-matches
// @Produce      json
// @Param        tournamentID path string true "UUID турнира"
// @Param        group_id query int    false "ID группы"
// @Param        phase_id query int    false "ID этапа"
// @Param        status   query string false "Статус матча"
// @Param        limit    query int    false "Лимит"
// @Param        offset   query int    false "Смещение"
// @Success      200 {array} models.TournamentMatch
// @Security     BearerAuth
// @Router       /tournaments/{tournamentID}/matches [get]
func (h *TournamentMatchHandler) ListTournamentMatches(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getUUIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.list(w, r, services.TournamentMatchListFilter{TournamentID: &tournamentID})
}

// ListGroupMatches godoc
// @Summary      Матчи группы
// @Tags         tournament-matches
// @Produce      json
// @Param        groupID path int true "ID группы"
// @Param        status query string false "Статус матча"
// @Success      200 {array} models.TournamentMatch
// @Security     BearerAuth
// @Router       /groups/{groupID}/matches [get]
func (h *TournamentMatchHandler) ListGroupMatches(w http.ResponseWriter, r *http.Request) {
	groupID, err := getIDFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.list(w, r, services.TournamentMatchListFilter{GroupID: &groupID})
}

func (h *TournamentMatchHandler) list(w http.ResponseWriter, r *http.Request, filter services.TournamentMatchListFilter) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.GroupID == nil {
		if filter.GroupID, err = queryInt(r, "group_id"); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}
	if filter.PhaseID, err = queryInt(r, "phase_id"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := models.MatchStatus(status)
		filter.Status = &s
	}

	matches, err := h.matchService.ListMatches(r.Context(), p, filter, page)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, matches)
}

// GetMatch godoc
// @Summary      Матч турнира по ID
// @Tags         tournament-matches
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Success      200 {object} models.TournamentMatch
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournament-matches/{matchID} [get]
func (h *TournamentMatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	h.matchAction(w, r, h.matchService.GetMatch)
}

// UpdateMatch godoc
// @Summary      Обновить матч турнира
// @Tags         tournament-matches
// @Accept       json
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Param        input body services.UpdateTournamentMatchInput true "Изменяемые поля"
// @Success      200 {object} models.TournamentMatch
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournament-matches/{matchID} [patch]
func (h *TournamentMatchHandler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTournamentMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateMatch(r.Context(), p, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, match)
}

// UpdateScore godoc
// @Summary      Обновить счёт
// @Description  Можно одновременно сменить статус
// @Tags         tournament-matches
// @Accept       json
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Param        input body services.UpdateScoreInput true "Счёт"
// @Success      200 {object} models.TournamentMatch
// @Failure      400 {object} map[string]interface{}
// @Failure      403 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournament-matches/{matchID}/score [post]
func (h *TournamentMatchHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateScore(r.Context(), p, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, match)
}

// StartMatch godoc
// @Summary      Начать матч турнира
// @Tags         tournament-matches
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Success      200 {object} models.TournamentMatch
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournament-matches/{matchID}/start [post]
func (h *TournamentMatchHandler) StartMatch(w http.ResponseWriter, r *http.Request) {
	h.matchAction(w, r, h.matchService.StartMatch)
}

// FinishMatch godoc
// @Summary      Завершить матч турнира
// @Tags         tournament-matches
// @Produce      json
// @Param        matchID path string true "UUID матча"
// @Success      200 {object} models.TournamentMatch
// @Failure      400 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournament-matches/{matchID}/finish [post]
func (h *TournamentMatchHandler) FinishMatch(w http.ResponseWriter, r *http.Request) {
	h.matchAction(w, r, h.matchService.FinishMatch)
}

func (h *TournamentMatchHandler) matchAction(w http.ResponseWriter, r *http.Request, action func(context.Context, *services.Principal, uuid.UUID) (*models.TournamentMatch, error)) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := action(r.Context(), p, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, match)
}

// DeleteMatch godoc
// @Summary      Удалить матч турнира
// @Tags         tournament-matches
// @Param        matchID path string true "UUID матча"
// @Success      204
// @Failure      403 {object} map[string]interface{}
// @Failure      404 {object} map[string]interface{}
// @Security     BearerAuth
// @Router       /tournament-matches/{matchID} [delete]
func (h *TournamentMatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.DeleteMatch(r.Context(), p, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
